package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"internal-wallet-service/internal/core/ports"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// codeIllegalOperation is returned by standalone servers for transactions.
const codeIllegalOperation = 20

// Transactor implements ports.Transactor with multi-document transactions.
type Transactor struct {
	client      *mongo.Client
	unsupported atomic.Bool
	log         zerolog.Logger
}

// NewTransactor creates a Transactor for the store's client.
func NewTransactor(store *Store, log zerolog.Logger) *Transactor {
	return &Transactor{client: store.client, log: log}
}

// WithinTransaction runs fn inside a session transaction. Once the server has
// rejected transactions, later calls fail fast with
// ports.ErrAtomicUnitsUnsupported without opening a session.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.unsupported.Load() {
		return ports.ErrAtomicUnitsUnsupported
	}
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return t.classify(fmt.Errorf("start session: %w", err))
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	if err != nil {
		return t.classify(err)
	}
	return nil
}

func (t *Transactor) classify(err error) error {
	if !isTransactionsUnsupported(err) {
		return err
	}
	if t.unsupported.CompareAndSwap(false, true) {
		t.log.Warn().Err(err).Msg("mongodb deployment does not support transactions")
	}
	return fmt.Errorf("%w: %v", ports.ErrAtomicUnitsUnsupported, err)
}

// isTransactionsUnsupported reports whether err means the deployment cannot
// run multi-document transactions (standalone server).
func isTransactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeIllegalOperation {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction numbers are only allowed") ||
		strings.Contains(msg, "Sessions are not supported")
}

var _ ports.Transactor = (*Transactor)(nil)
