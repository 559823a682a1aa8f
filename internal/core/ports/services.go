package ports

import (
	"context"
	"time"

	"internal-wallet-service/internal/core/domain"

	"github.com/shopspring/decimal"
)

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached entry JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// LedgerService is the transaction engine.
type LedgerService interface {
	Submit(ctx context.Context, req SubmitRequest) (*domain.Outcome, error)
}

// SubmitRequest holds input for one transaction.
type SubmitRequest struct {
	Kind           domain.TransactionKind
	UserIdentifier string // username or user ID
	AssetTypeName  string
	Amount         decimal.Decimal
	IdempotencyKey string
	Description    string
}

// EntityResolver maps caller-supplied identifiers to entities.
type EntityResolver interface {
	ResolveUser(ctx context.Context, identifier string) (*domain.User, error)
	Resolve(ctx context.Context, userIdentifier, assetTypeName string) (*domain.User, *domain.AssetType, error)
}

// WalletQueryService serves read-only wallet views.
type WalletQueryService interface {
	GetBalances(ctx context.Context, userIdentifier string) ([]domain.WalletBalance, error)
	GetHistory(ctx context.Context, userIdentifier string, limit int) ([]domain.HistoryEntry, error)
}

// RegistryService manages users and asset types.
type RegistryService interface {
	CreateUser(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateAssetType(ctx context.Context, name string) (*domain.AssetType, error)
	ListAssetTypes(ctx context.Context) ([]domain.AssetType, error)
	SeedAssetTypes(ctx context.Context, names []string) error
}

// AuditService records audit entries without blocking the caller.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
