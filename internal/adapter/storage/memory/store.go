// Package memory is an in-process store used by tests and the "memory"
// store driver. All state lives behind one RWMutex, which makes every
// repository call a single atomic step.
package memory

import (
	"context"
	"sync"
	"time"

	"internal-wallet-service/internal/core/domain"

	"github.com/google/uuid"
)

type walletKey struct {
	userID      uuid.UUID
	assetTypeID uuid.UUID
}

// Store holds users, asset types, wallets, transactions and audit logs.
type Store struct {
	mu sync.RWMutex

	users      map[uuid.UUID]domain.User
	usernames  map[string]uuid.UUID
	userOrder  []uuid.UUID
	assets     map[uuid.UUID]domain.AssetType
	assetNames map[string]uuid.UUID
	assetOrder []uuid.UUID

	wallets     map[uuid.UUID]*domain.Wallet
	walletIndex map[walletKey]uuid.UUID
	walletOrder []uuid.UUID

	txs    []domain.Transaction
	txKeys map[string]int // idempotency key -> index in txs

	audits []domain.AuditLog

	// unitMu serializes atomic units, giving them serializable isolation.
	unitMu               sync.Mutex
	supportsTransactions bool
}

// NewStore creates an empty store. When supportsTransactions is false the
// Transactor reports ports.ErrAtomicUnitsUnsupported, like a MongoDB
// deployment without replica sets.
func NewStore(supportsTransactions bool) *Store {
	return &Store{
		users:                make(map[uuid.UUID]domain.User),
		usernames:            make(map[string]uuid.UUID),
		assets:               make(map[uuid.UUID]domain.AssetType),
		assetNames:           make(map[string]uuid.UUID),
		wallets:              make(map[uuid.UUID]*domain.Wallet),
		walletIndex:          make(map[walletKey]uuid.UUID),
		txKeys:               make(map[string]int),
		supportsTransactions: supportsTransactions,
	}
}

// TransactionCount returns the number of logged transactions.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// AuditLogs returns a copy of the recorded audit logs.
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditLog, len(s.audits))
	copy(out, s.audits)
	return out
}

func now() time.Time {
	return time.Now().UTC()
}

// unit records undo steps for an open atomic unit.
type unit struct {
	undo []func()
}

type unitKey struct{}

func unitFrom(ctx context.Context) *unit {
	u, _ := ctx.Value(unitKey{}).(*unit)
	return u
}

// record registers an undo step. Callers hold s.mu.
func record(ctx context.Context, fn func()) {
	if u := unitFrom(ctx); u != nil {
		u.undo = append(u.undo, fn)
	}
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
