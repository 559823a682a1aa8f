package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type registryService struct {
	userRepo   ports.UserRepository
	assetRepo  ports.AssetTypeRepository
	walletRepo ports.WalletRepository
	log        zerolog.Logger
}

// NewRegistryService creates a new user and asset type registry.
func NewRegistryService(
	userRepo ports.UserRepository,
	assetRepo ports.AssetTypeRepository,
	walletRepo ports.WalletRepository,
	log zerolog.Logger,
) ports.RegistryService {
	return &registryService{
		userRepo:   userRepo,
		assetRepo:  assetRepo,
		walletRepo: walletRepo,
		log:        log,
	}
}

// CreateUser registers a user and opens a zero-balance wallet per asset type.
// Wallet creation is best-effort; credits create missing wallets later.
func (s *registryService) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	if err := validateName("username", username); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, apperror.ErrAlreadyExists("user")
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create user: %w", err))
	}

	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to list asset types for wallet creation")
		return user, nil
	}
	for _, a := range assets {
		if err := s.walletRepo.EnsureZero(ctx, user.ID, a.ID); err != nil {
			s.log.Warn().Err(err).
				Str("user_id", user.ID.String()).
				Str("asset_type", a.Name).
				Msg("failed to create zero-balance wallet")
		}
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("username", username).Msg("user created")
	return user, nil
}

func (s *registryService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list users: %w", err))
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *registryService) CreateAssetType(ctx context.Context, name string) (*domain.AssetType, error) {
	if err := validateName("asset type name", name); err != nil {
		return nil, err
	}

	asset := &domain.AssetType{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, apperror.ErrAlreadyExists("asset type")
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create asset type: %w", err))
	}

	s.log.Info().Str("asset_type_id", asset.ID.String()).Str("name", name).Msg("asset type created")
	return asset, nil
}

func (s *registryService) ListAssetTypes(ctx context.Context) ([]domain.AssetType, error) {
	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list asset types: %w", err))
	}
	if assets == nil {
		assets = []domain.AssetType{}
	}
	return assets, nil
}

// SeedAssetTypes creates the named asset types that do not exist yet.
func (s *registryService) SeedAssetTypes(ctx context.Context, names []string) error {
	for _, name := range names {
		existing, err := s.assetRepo.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("seed asset type %q: %w", name, err)
		}
		if existing != nil {
			continue
		}

		_, err = s.CreateAssetType(ctx, name)
		if err != nil && !apperror.HasCode(err, apperror.CodeConflict) {
			return fmt.Errorf("seed asset type %q: %w", name, err)
		}
	}
	return nil
}

// validateName rejects empty names and names with surrounding whitespace,
// since names are matched exactly.
func validateName(field, name string) error {
	if name == "" {
		return apperror.Validation(field + " is required")
	}
	if strings.TrimSpace(name) != name {
		return apperror.Validation(field + " must not start or end with whitespace")
	}
	return nil
}
