package handler

import (
	"internal-wallet-service/internal/adapter/http/dto"
	"internal-wallet-service/internal/adapter/http/middleware"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/pkg/apperror"
	"internal-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// RegistryHandler handles user and asset type registration.
type RegistryHandler struct {
	registrySvc ports.RegistryService
}

func NewRegistryHandler(registrySvc ports.RegistryService) *RegistryHandler {
	return &RegistryHandler{registrySvc: registrySvc}
}

// CreateUser handles POST /api/v1/users.
func (h *RegistryHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.registrySvc.CreateUser(c.Request.Context(), req.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxUserID, user.ID)
	c.Set(middleware.CtxResourceID, user.ID.String())
	response.Created(c, dto.ToUserResponse(user))
}

// ListUsers handles GET /api/v1/users.
func (h *RegistryHandler) ListUsers(c *gin.Context) {
	users, err := h.registrySvc.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.ToUserResponse(&users[i]))
	}
	response.OK(c, out)
}

// CreateAssetType handles POST /api/v1/assets.
func (h *RegistryHandler) CreateAssetType(c *gin.Context) {
	var req dto.CreateAssetTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	asset, err := h.registrySvc.CreateAssetType(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, asset.ID.String())
	response.Created(c, dto.ToAssetTypeResponse(asset))
}

// ListAssetTypes handles GET /api/v1/assets.
func (h *RegistryHandler) ListAssetTypes(c *gin.Context) {
	assets, err := h.registrySvc.ListAssetTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.AssetTypeResponse, 0, len(assets))
	for i := range assets {
		out = append(out, dto.ToAssetTypeResponse(&assets[i]))
	}
	response.OK(c, out)
}
