package handler

import (
	"strconv"

	"internal-wallet-service/internal/adapter/http/dto"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/pkg/apperror"
	"internal-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles read-only wallet endpoints.
type WalletHandler struct {
	querySvc ports.WalletQueryService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(querySvc ports.WalletQueryService) *WalletHandler {
	return &WalletHandler{querySvc: querySvc}
}

// GetBalances handles GET /api/v1/wallet/:user.
func (h *WalletHandler) GetBalances(c *gin.Context) {
	balances, err := h.querySvc.GetBalances(c.Request.Context(), c.Param("user"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToBalanceResponses(balances))
}

// GetHistory handles GET /api/v1/transactions/:user?limit=.
func (h *WalletHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(c, apperror.Validation("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.querySvc.GetHistory(c.Request.Context(), c.Param("user"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.HistoryResponse{
		Items: dto.ToHistoryEntryResponses(entries),
		Limit: limit,
	})
}
