package memory

import (
	"context"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/google/uuid"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	store *Store
}

// NewTransactionRepo creates a memory-backed TransactionRepository.
func NewTransactionRepo(store *Store) *TransactionRepo {
	return &TransactionRepo{store: store}
}

// Append logs an entry. The idempotency key is unique across all wallets.
func (r *TransactionRepo) Append(ctx context.Context, tx *domain.Transaction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txKeys[tx.IdempotencyKey]; ok {
		return ports.ErrDuplicateIdempotencyKey
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now()
	}
	s.txKeys[tx.IdempotencyKey] = len(s.txs)
	s.txs = append(s.txs, *tx)

	id := tx.ID
	record(ctx, func() {
		s.removeTxLocked(id)
	})
	return nil
}

// GetByIdempotencyKey returns the entry or nil if absent.
func (r *TransactionRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	idx, ok := r.store.txKeys[key]
	if !ok {
		return nil, nil
	}
	out := r.store.txs[idx]
	return &out, nil
}

// ListByWallets returns up to limit entries for the wallets, newest first.
func (r *TransactionRepo) ListByWallets(_ context.Context, walletIDs []uuid.UUID, limit int) ([]domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	want := make(map[uuid.UUID]struct{}, len(walletIDs))
	for _, id := range walletIDs {
		want[id] = struct{}{}
	}

	var out []domain.Transaction
	for i := len(r.store.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if _, ok := want[r.store.txs[i].WalletID]; ok {
			out = append(out, r.store.txs[i])
		}
	}
	return out, nil
}

// removeTxLocked drops an entry and reindexes the keys. Callers hold s.mu.
func (s *Store) removeTxLocked(id uuid.UUID) {
	for i, tx := range s.txs {
		if tx.ID != id {
			continue
		}
		s.txs = append(s.txs[:i], s.txs[i+1:]...)
		delete(s.txKeys, tx.IdempotencyKey)
		for j := i; j < len(s.txs); j++ {
			s.txKeys[s.txs[j].IdempotencyKey] = j
		}
		return
	}
}

var _ ports.TransactionRepository = (*TransactionRepo)(nil)
