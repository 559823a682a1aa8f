package dto

import (
	"time"

	"internal-wallet-service/internal/core/domain"

	"github.com/shopspring/decimal"
)

// TransactionRequest is the request body for topup, bonus and spend.
// Identifiers are matched exactly and are not sanitized.
type TransactionRequest struct {
	UserID         string          `json:"user_id" binding:"required,max=64" sanitize:"-"`
	AssetType      string          `json:"asset_type" binding:"required,max=100" sanitize:"-"`
	Amount         decimal.Decimal `json:"amount" binding:"positive_decimal"`
	IdempotencyKey string          `json:"idempotency_key" binding:"required,max=64" sanitize:"-"`
	Description    string          `json:"description,omitempty" binding:"max=255"`
}

// TransactionResponse is the response body for an applied (or replayed) transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	Balance       decimal.Decimal `json:"balance"`
}

// CreateUserRequest is the request body for user registration.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50,safe_id"`
}

// CreateAssetTypeRequest is the request body for asset type registration.
type CreateAssetTypeRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100" sanitize:"-"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type AssetTypeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// BalanceResponse is one wallet in a balance query.
type BalanceResponse struct {
	WalletID  string          `json:"wallet_id"`
	AssetType string          `json:"asset_type"`
	Balance   decimal.Decimal `json:"balance"`
}

// HistoryEntryResponse is one ledger entry in a history query.
type HistoryEntryResponse struct {
	TransactionID string          `json:"transaction_id"`
	WalletID      string          `json:"wallet_id"`
	AssetType     string          `json:"asset_type"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CreatedAt     string          `json:"created_at"`
}

// HistoryResponse wraps a history page.
type HistoryResponse struct {
	Items []HistoryEntryResponse `json:"items"`
	Limit int                    `json:"limit"`
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Username: u.Username, CreatedAt: u.CreatedAt.Format(time.RFC3339)}
}

func ToAssetTypeResponse(a *domain.AssetType) AssetTypeResponse {
	return AssetTypeResponse{ID: a.ID.String(), Name: a.Name, CreatedAt: a.CreatedAt.Format(time.RFC3339)}
}

func ToBalanceResponses(balances []domain.WalletBalance) []BalanceResponse {
	out := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, BalanceResponse{
			WalletID:  b.WalletID.String(),
			AssetType: b.AssetType,
			Balance:   b.Balance,
		})
	}
	return out
}

func ToHistoryEntryResponses(entries []domain.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{
			TransactionID: e.TransactionID.String(),
			WalletID:      e.WalletID.String(),
			AssetType:     e.AssetType,
			Kind:          string(e.Kind),
			Amount:        e.Amount,
			Description:   e.Description,
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
