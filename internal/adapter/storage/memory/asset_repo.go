package memory

import (
	"context"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
)

// AssetTypeRepo implements ports.AssetTypeRepository.
type AssetTypeRepo struct {
	store *Store
}

// NewAssetTypeRepo creates a memory-backed AssetTypeRepository.
func NewAssetTypeRepo(store *Store) *AssetTypeRepo {
	return &AssetTypeRepo{store: store}
}

// Create inserts an asset type. Returns ports.ErrConflict if the name is taken.
func (r *AssetTypeRepo) Create(ctx context.Context, asset *domain.AssetType) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assetNames[asset.Name]; ok {
		return ports.ErrConflict
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now()
	}
	s.assets[asset.ID] = *asset
	s.assetNames[asset.Name] = asset.ID
	s.assetOrder = append(s.assetOrder, asset.ID)

	record(ctx, func() {
		delete(s.assets, asset.ID)
		delete(s.assetNames, asset.Name)
		s.assetOrder = removeID(s.assetOrder, asset.ID)
	})
	return nil
}

// GetByName returns the asset type with exactly this name, or nil.
func (r *AssetTypeRepo) GetByName(_ context.Context, name string) (*domain.AssetType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.assetNames[name]
	if !ok {
		return nil, nil
	}
	a := r.store.assets[id]
	return &a, nil
}

// List returns all asset types in creation order.
func (r *AssetTypeRepo) List(_ context.Context) ([]domain.AssetType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.AssetType, 0, len(r.store.assetOrder))
	for _, id := range r.store.assetOrder {
		out = append(out, r.store.assets[id])
	}
	return out, nil
}

var _ ports.AssetTypeRepository = (*AssetTypeRepo)(nil)
