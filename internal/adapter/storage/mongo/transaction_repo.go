package mongo

import (
	"context"
	"fmt"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	col *mongo.Collection
}

// NewTransactionRepo creates a transaction log repository on the
// transactions collection.
func NewTransactionRepo(store *Store) *TransactionRepo {
	return &TransactionRepo{col: store.db.Collection(colTransactions)}
}

// Append inserts a ledger entry. The unique idempotency_key index turns a
// second entry for the same key into ports.ErrDuplicateIdempotencyKey.
func (r *TransactionRepo) Append(ctx context.Context, tx *domain.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now()
	}
	m, err := toTransactionModel(tx)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ports.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByIdempotencyKey returns the entry committed under key, or nil when the
// key is unused.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	var m transactionModel
	if err := r.col.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return fromTransactionModel(&m)
}

// ListByWallets returns up to limit entries for the given wallets, newest
// first. An empty wallet list or non-positive limit returns no entries.
func (r *TransactionRepo) ListByWallets(ctx context.Context, walletIDs []uuid.UUID, limit int) ([]domain.Transaction, error) {
	if len(walletIDs) == 0 || limit <= 0 {
		return []domain.Transaction{}, nil
	}

	cur, err := r.col.Find(ctx, historyFilter(walletIDs), historyOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var models []transactionModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(models))
	for i := range models {
		t, err := fromTransactionModel(&models[i])
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, nil
}

func historyFilter(walletIDs []uuid.UUID) bson.M {
	ids := make([]string, len(walletIDs))
	for i, id := range walletIDs {
		ids[i] = id.String()
	}
	return bson.M{"wallet_id": bson.M{"$in": ids}}
}

func historyOptions(limit int) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
}

var _ ports.TransactionRepository = (*TransactionRepo)(nil)
