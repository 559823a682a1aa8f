package memory

import (
	"context"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	store *Store
}

// NewWalletRepo creates a memory-backed WalletRepository.
func NewWalletRepo(store *Store) *WalletRepo {
	return &WalletRepo{store: store}
}

// ApplyDelta adds delta to the wallet under the store lock. A debit that
// would leave a negative balance matches nothing and returns (nil, nil).
func (r *WalletRepo) ApplyDelta(ctx context.Context, userID, assetTypeID uuid.UUID, delta decimal.Decimal, allowCreate bool) (*domain.Wallet, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := walletKey{userID: userID, assetTypeID: assetTypeID}
	id, ok := s.walletIndex[key]
	if !ok {
		if !allowCreate || delta.IsNegative() {
			return nil, nil
		}
		w := r.insertLocked(ctx, key, delta)
		out := *w
		return &out, nil
	}

	w := s.wallets[id]
	if !w.CanAfford(delta) {
		return nil, nil
	}

	w.Balance = w.Balance.Add(delta)
	w.UpdatedAt = now()
	record(ctx, func() {
		w.Balance = w.Balance.Sub(delta)
	})

	out := *w
	return &out, nil
}

// GetByOwner returns the wallet or nil if absent.
func (r *WalletRepo) GetByOwner(_ context.Context, userID, assetTypeID uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.walletIndex[walletKey{userID: userID, assetTypeID: assetTypeID}]
	if !ok {
		return nil, nil
	}
	out := *r.store.wallets[id]
	return &out, nil
}

// ListByUser returns the user's wallets in creation order.
func (r *WalletRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []domain.Wallet
	for _, id := range r.store.walletOrder {
		if w := r.store.wallets[id]; w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

// EnsureZero creates a zero-balance wallet unless one exists.
func (r *WalletRepo) EnsureZero(ctx context.Context, userID, assetTypeID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := walletKey{userID: userID, assetTypeID: assetTypeID}
	if _, ok := s.walletIndex[key]; ok {
		return nil
	}
	r.insertLocked(ctx, key, decimal.Zero)
	return nil
}

func (r *WalletRepo) insertLocked(ctx context.Context, key walletKey, balance decimal.Decimal) *domain.Wallet {
	s := r.store
	ts := now()
	w := &domain.Wallet{
		ID:          uuid.New(),
		UserID:      key.userID,
		AssetTypeID: key.assetTypeID,
		Balance:     balance,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	s.wallets[w.ID] = w
	s.walletIndex[key] = w.ID
	s.walletOrder = append(s.walletOrder, w.ID)
	record(ctx, func() {
		delete(s.wallets, w.ID)
		delete(s.walletIndex, key)
		s.walletOrder = removeID(s.walletOrder, w.ID)
	})
	return w
}

var _ ports.WalletRepository = (*WalletRepo)(nil)
