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

const walletColumns = `id, user_id, asset_type_id, balance::text, created_at, updated_at`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// ApplyDelta adds delta to the wallet in one statement. Credits with
// allowCreate upsert on the (user_id, asset_type_id) constraint; everything
// else is a guarded UPDATE that matches no row when the result would be
// negative.
func (r *WalletRepo) ApplyDelta(ctx context.Context, userID, assetTypeID uuid.UUID, delta decimal.Decimal, allowCreate bool) (*domain.Wallet, error) {
	q := conn(ctx, r.pool)

	if allowCreate && delta.IsPositive() {
		query := `INSERT INTO wallets (id, user_id, asset_type_id, balance, created_at, updated_at)
			VALUES ($1, $2, $3, $4::numeric, NOW(), NOW())
			ON CONFLICT (user_id, asset_type_id)
			DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()
			RETURNING ` + walletColumns

		w, err := scanWallet(q.QueryRow(ctx, query, uuid.New(), userID, assetTypeID, delta.String()))
		if err != nil {
			return nil, fmt.Errorf("upsert wallet balance: %w", err)
		}
		return w, nil
	}

	query := `UPDATE wallets SET balance = balance + $3::numeric, updated_at = NOW()
		WHERE user_id = $1 AND asset_type_id = $2 AND balance + $3::numeric >= 0
		RETURNING ` + walletColumns

	w, err := scanWallet(q.QueryRow(ctx, query, userID, assetTypeID, delta.String()))
	if err != nil {
		return nil, fmt.Errorf("update wallet balance: %w", err)
	}
	return w, nil
}

// GetByOwner fetches the wallet for a user and asset type.
func (r *WalletRepo) GetByOwner(ctx context.Context, userID, assetTypeID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND asset_type_id = $2`

	w, err := scanWallet(conn(ctx, r.pool).QueryRow(ctx, query, userID, assetTypeID))
	if err != nil {
		return nil, fmt.Errorf("get wallet by owner: %w", err)
	}
	return w, nil
}

// ListByUser returns all wallets of a user ordered by creation time.
func (r *WalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

// EnsureZero creates a zero-balance wallet unless one exists.
func (r *WalletRepo) EnsureZero(ctx context.Context, userID, assetTypeID uuid.UUID) error {
	query := `INSERT INTO wallets (id, user_id, asset_type_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, 0, NOW(), NOW())
		ON CONFLICT (user_id, asset_type_id) DO NOTHING`

	if _, err := conn(ctx, r.pool).Exec(ctx, query, uuid.New(), userID, assetTypeID); err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}
	return nil
}

// scanWallet returns (nil, nil) when the row does not exist.
func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w       domain.Wallet
		balance string
	)
	err := row.Scan(&w.ID, &w.UserID, &w.AssetTypeID, &balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	w.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	return &w, nil
}

var _ ports.WalletRepository = (*WalletRepo)(nil)
