package handler

import (
	"errors"

	"internal-wallet-service/internal/adapter/http/dto"
	"internal-wallet-service/internal/adapter/http/middleware"
	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/pkg/apperror"
	"internal-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// LedgerHandler handles the balance-changing endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Topup handles POST /api/v1/wallet/topup.
func (h *LedgerHandler) Topup(c *gin.Context) {
	h.submit(c, domain.TransactionKindTopup)
}

// Bonus handles POST /api/v1/wallet/bonus.
func (h *LedgerHandler) Bonus(c *gin.Context) {
	h.submit(c, domain.TransactionKindBonus)
}

// Spend handles POST /api/v1/wallet/spend.
func (h *LedgerHandler) Spend(c *gin.Context) {
	h.submit(c, domain.TransactionKindSpend)
}

func (h *LedgerHandler) submit(c *gin.Context, kind domain.TransactionKind) {
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	dto.SanitizeStruct(&req)

	out, err := h.ledgerSvc.Submit(c.Request.Context(), ports.SubmitRequest{
		Kind:           kind,
		UserIdentifier: req.UserID,
		AssetTypeName:  req.AssetType,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
		Description:    req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxSubject, req.UserID)
	c.Set(middleware.CtxResourceID, out.TransactionID.String())
	response.Created(c, dto.TransactionResponse{
		TransactionID: out.TransactionID.String(),
		Balance:       out.Balance,
	})
}

// bindingError reports an amount rule failure as InvalidAmount and every
// other binding failure as a generic validation error.
func bindingError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "positive_decimal" {
				return apperror.ErrInvalidAmount()
			}
		}
	}
	return apperror.Validation(err.Error())
}
