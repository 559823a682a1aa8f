package service

import (
	"context"
	"fmt"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/pkg/apperror"

	"github.com/google/uuid"
)

// EntityResolverImpl implements ports.EntityResolver.
type EntityResolverImpl struct {
	users  ports.UserRepository
	assets ports.AssetTypeRepository
}

// NewEntityResolver creates a new EntityResolverImpl.
func NewEntityResolver(users ports.UserRepository, assets ports.AssetTypeRepository) *EntityResolverImpl {
	return &EntityResolverImpl{users: users, assets: assets}
}

// ResolveUser looks the identifier up as a username first, then as a user ID.
func (r *EntityResolverImpl) ResolveUser(ctx context.Context, identifier string) (*domain.User, error) {
	if identifier == "" {
		return nil, apperror.Validation("user identifier is required")
	}

	user, err := r.users.GetByUsername(ctx, identifier)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("find user by username: %w", err))
	}
	if user != nil {
		return user, nil
	}

	id, perr := uuid.Parse(identifier)
	if perr != nil {
		return nil, apperror.ErrNotFound("user")
	}
	user, err = r.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("find user by id: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	return user, nil
}

// Resolve returns the user and the asset type named exactly assetTypeName.
func (r *EntityResolverImpl) Resolve(ctx context.Context, userIdentifier, assetTypeName string) (*domain.User, *domain.AssetType, error) {
	user, err := r.ResolveUser(ctx, userIdentifier)
	if err != nil {
		return nil, nil, err
	}

	if assetTypeName == "" {
		return nil, nil, apperror.Validation("asset type is required")
	}
	asset, err := r.assets.GetByName(ctx, assetTypeName)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("find asset type: %w", err))
	}
	if asset == nil {
		return nil, nil, apperror.ErrNotFound("asset type")
	}
	return user, asset, nil
}

var _ ports.EntityResolver = (*EntityResolverImpl)(nil)
