package memory

import (
	"context"

	"internal-wallet-service/internal/core/ports"
)

// Transactor implements ports.Transactor over a Store.
type Transactor struct {
	store *Store
}

// NewTransactor creates a Transactor for the store.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// WithinTransaction runs fn as one unit. Units are serialized; on error the
// recorded undo steps are applied in reverse order.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.store.supportsTransactions {
		return ports.ErrAtomicUnitsUnsupported
	}
	if unitFrom(ctx) != nil {
		return fn(ctx)
	}

	t.store.unitMu.Lock()
	defer t.store.unitMu.Unlock()

	u := &unit{}
	if err := fn(context.WithValue(ctx, unitKey{}, u)); err != nil {
		t.store.mu.Lock()
		for i := len(u.undo) - 1; i >= 0; i-- {
			u.undo[i]()
		}
		t.store.mu.Unlock()
		return err
	}
	return nil
}

var _ ports.Transactor = (*Transactor)(nil)
