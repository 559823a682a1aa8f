package postgres

import (
	"context"
	"errors"
	"fmt"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// AssetTypeRepo implements ports.AssetTypeRepository.
type AssetTypeRepo struct {
	pool Pool
}

// NewAssetTypeRepo creates a new AssetTypeRepo.
func NewAssetTypeRepo(pool Pool) *AssetTypeRepo {
	return &AssetTypeRepo{pool: pool}
}

// Create inserts an asset type. Returns ports.ErrConflict if the name is taken.
func (r *AssetTypeRepo) Create(ctx context.Context, a *domain.AssetType) error {
	query := `INSERT INTO asset_types (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := conn(ctx, r.pool).Exec(ctx, query, a.ID, a.Name, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return fmt.Errorf("insert asset type: %w", err)
	}
	return nil
}

// GetByName fetches an asset type by exact, case-sensitive name.
func (r *AssetTypeRepo) GetByName(ctx context.Context, name string) (*domain.AssetType, error) {
	query := `SELECT id, name, created_at FROM asset_types WHERE name = $1`

	a := &domain.AssetType{}
	err := conn(ctx, r.pool).QueryRow(ctx, query, name).Scan(&a.ID, &a.Name, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset type by name: %w", err)
	}
	return a, nil
}

// List returns all asset types ordered by creation time.
func (r *AssetTypeRepo) List(ctx context.Context) ([]domain.AssetType, error) {
	query := `SELECT id, name, created_at FROM asset_types ORDER BY created_at, name`

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list asset types: %w", err)
	}
	defer rows.Close()

	var assets []domain.AssetType
	for rows.Next() {
		var a domain.AssetType
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset type: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate asset types: %w", err)
	}
	return assets, nil
}

var _ ports.AssetTypeRepository = (*AssetTypeRepo)(nil)
