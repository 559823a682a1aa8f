package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds the balance of one asset type for one user.
// There is at most one wallet per (UserID, AssetTypeID) and Balance is never negative.
type Wallet struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	AssetTypeID uuid.UUID       `json:"asset_type_id"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CanAfford reports whether applying delta keeps the balance non-negative.
func (w *Wallet) CanAfford(delta decimal.Decimal) bool {
	return !w.Balance.Add(delta).IsNegative()
}
