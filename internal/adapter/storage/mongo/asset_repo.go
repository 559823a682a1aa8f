package mongo

import (
	"context"
	"fmt"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// AssetTypeRepo implements ports.AssetTypeRepository.
type AssetTypeRepo struct {
	col *mongo.Collection
}

// NewAssetTypeRepo creates an asset type repository on the asset_types collection.
func NewAssetTypeRepo(store *Store) *AssetTypeRepo {
	return &AssetTypeRepo{col: store.db.Collection(colAssetTypes)}
}

// Create inserts an asset type. A duplicate name returns ports.ErrConflict.
func (r *AssetTypeRepo) Create(ctx context.Context, asset *domain.AssetType) error {
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now()
	}
	if _, err := r.col.InsertOne(ctx, toAssetTypeModel(asset)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ports.ErrConflict
		}
		return fmt.Errorf("insert asset type: %w", err)
	}
	return nil
}

// GetByName returns the asset type with the exact, case-sensitive name,
// or nil when none exists.
func (r *AssetTypeRepo) GetByName(ctx context.Context, name string) (*domain.AssetType, error) {
	var m assetTypeModel
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset type: %w", err)
	}
	return fromAssetTypeModel(&m)
}

// List returns every asset type, oldest first.
func (r *AssetTypeRepo) List(ctx context.Context) ([]domain.AssetType, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list asset types: %w", err)
	}
	var models []assetTypeModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("decode asset types: %w", err)
	}

	assets := make([]domain.AssetType, 0, len(models))
	for i := range models {
		a, err := fromAssetTypeModel(&models[i])
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, nil
}

var _ ports.AssetTypeRepository = (*AssetTypeRepo)(nil)
