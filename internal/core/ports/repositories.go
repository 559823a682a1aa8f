package ports

import (
	"context"
	"errors"

	"internal-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateIdempotencyKey is returned by TransactionRepository.Append
	// when an entry with the same idempotency key already exists.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrAtomicUnitsUnsupported is returned by Transactor.WithinTransaction
	// when the store cannot run multi-step all-or-nothing units.
	ErrAtomicUnitsUnsupported = errors.New("atomic multi-step units unsupported")

	// ErrConflict is returned on a uniqueness violation of a natural key
	// (username, asset type name).
	ErrConflict = errors.New("unique constraint conflict")
)

// UserRepository defines persistence operations for users.
// Getters return (nil, nil) when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// AssetTypeRepository defines persistence operations for asset types.
type AssetTypeRepository interface {
	Create(ctx context.Context, asset *domain.AssetType) error
	GetByName(ctx context.Context, name string) (*domain.AssetType, error)
	List(ctx context.Context) ([]domain.AssetType, error)
}

// WalletRepository is the balance store.
type WalletRepository interface {
	// ApplyDelta atomically adds delta to the (userID, assetTypeID) wallet.
	// When delta is negative the update only matches if the resulting balance
	// stays non-negative. When allowCreate is true a missing wallet is created
	// with delta as its balance in the same step. Returns (nil, nil) when no
	// wallet matched.
	ApplyDelta(ctx context.Context, userID, assetTypeID uuid.UUID, delta decimal.Decimal, allowCreate bool) (*domain.Wallet, error)
	GetByOwner(ctx context.Context, userID, assetTypeID uuid.UUID) (*domain.Wallet, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	// EnsureZero creates a zero-balance wallet unless one already exists.
	EnsureZero(ctx context.Context, userID, assetTypeID uuid.UUID) error
}

// TransactionRepository is the append-only transaction log.
type TransactionRepository interface {
	// Append inserts an entry. Returns ErrDuplicateIdempotencyKey if the key is taken.
	Append(ctx context.Context, tx *domain.Transaction) error
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	// ListByWallets returns up to limit entries for the wallets, newest first.
	ListByWallets(ctx context.Context, walletIDs []uuid.UUID, limit int) ([]domain.Transaction, error)
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// Transactor runs fn as one all-or-nothing unit. Repositories called with the
// context passed to fn take part in the unit. The unit is committed when fn
// returns nil and rolled back otherwise; fn's error is returned unchanged.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
