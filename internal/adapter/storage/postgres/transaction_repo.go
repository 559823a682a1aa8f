package postgres

import (
	"context"
	"errors"
	"fmt"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, wallet_id, amount::text, kind, description, idempotency_key,
	balance_after::text, mode, created_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Append inserts a ledger entry. The unique index on idempotency_key makes
// concurrent duplicates fail with ports.ErrDuplicateIdempotencyKey.
func (r *TransactionRepo) Append(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, wallet_id, amount, kind, description, idempotency_key,
		balance_after, mode, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7::numeric, $8, $9)`

	_, err := conn(ctx, r.pool).Exec(ctx, query,
		t.ID, t.WalletID, t.Amount.String(), string(t.Kind), t.Description,
		t.IdempotencyKey, t.BalanceAfter.String(), string(t.Mode), t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByIdempotencyKey fetches the entry recorded for key.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`

	t, err := scanTransaction(conn(ctx, r.pool).QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by idempotency key: %w", err)
	}
	return t, nil
}

// ListByWallets returns up to limit entries for the wallets, newest first.
func (r *TransactionRepo) ListByWallets(ctx context.Context, walletIDs []uuid.UUID, limit int) ([]domain.Transaction, error) {
	if len(walletIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(walletIDs))
	for i, id := range walletIDs {
		ids[i] = id.String()
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE wallet_id = ANY($1::uuid[])
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := conn(ctx, r.pool).Query(ctx, query, ids, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                    domain.Transaction
		amount, balanceAfter string
		kind, mode           string
	)
	err := row.Scan(&t.ID, &t.WalletID, &amount, &kind, &t.Description,
		&t.IdempotencyKey, &balanceAfter, &mode, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if t.BalanceAfter, err = decimal.NewFromString(balanceAfter); err != nil {
		return nil, fmt.Errorf("parse balance_after %q: %w", balanceAfter, err)
	}
	t.Kind = domain.TransactionKind(kind)
	t.Mode = domain.AtomicityMode(mode)
	return &t, nil
}

var _ ports.TransactionRepository = (*TransactionRepo)(nil)
