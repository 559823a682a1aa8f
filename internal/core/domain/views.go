package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletBalance is a wallet joined with its asset type name.
type WalletBalance struct {
	WalletID  uuid.UUID       `json:"wallet_id"`
	AssetType string          `json:"asset_type"`
	Balance   decimal.Decimal `json:"balance"`
}

// HistoryEntry is a transaction joined with its asset type name.
type HistoryEntry struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	WalletID      uuid.UUID       `json:"wallet_id"`
	AssetType     string          `json:"asset_type"`
	Kind          TransactionKind `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}
