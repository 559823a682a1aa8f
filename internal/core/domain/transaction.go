package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind is the kind of balance movement.
type TransactionKind string

const (
	TransactionKindTopup TransactionKind = "TOPUP"
	TransactionKindBonus TransactionKind = "BONUS"
	TransactionKindSpend TransactionKind = "SPEND"
)

// ParseTransactionKind converts a raw string into a TransactionKind.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch k := TransactionKind(s); k {
	case TransactionKindTopup, TransactionKindBonus, TransactionKindSpend:
		return k, nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

// IsCredit reports whether the kind adds funds. Credits may create a wallet.
func (k TransactionKind) IsCredit() bool {
	return k == TransactionKindTopup || k == TransactionKindBonus
}

// SignedDelta returns +amount for credits and -amount for spends.
func (k TransactionKind) SignedDelta(amount decimal.Decimal) decimal.Decimal {
	if k.IsCredit() {
		return amount
	}
	return amount.Neg()
}

// Transaction is an immutable ledger entry. IdempotencyKey is globally unique.
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	WalletID       uuid.UUID       `json:"wallet_id"`
	Amount         decimal.Decimal `json:"amount"` // signed
	Kind           TransactionKind `json:"kind"`
	Description    string          `json:"description"`
	IdempotencyKey string          `json:"idempotency_key"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	Mode           AtomicityMode   `json:"mode"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Outcome returns the caller-visible result recorded by this entry.
func (t *Transaction) Outcome() *Outcome {
	return &Outcome{
		TransactionID: t.ID,
		Balance:       t.BalanceAfter,
		Mode:          t.Mode,
	}
}

// Outcome is the Applied result of a submitted transaction. Replays return
// the outcome recorded by the original entry.
type Outcome struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Balance       decimal.Decimal `json:"balance"`
	Mode          AtomicityMode   `json:"-"`
}
