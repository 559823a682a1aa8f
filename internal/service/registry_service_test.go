package service

import (
	"context"
	"errors"
	"testing"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/internal/core/ports/mocks"
	"internal-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type registryTestDeps struct {
	svc        ports.RegistryService
	userRepo   *mocks.MockUserRepository
	assetRepo  *mocks.MockAssetTypeRepository
	walletRepo *mocks.MockWalletRepository
}

func setupRegistryService(t *testing.T) *registryTestDeps {
	ctrl := gomock.NewController(t)
	d := &registryTestDeps{
		userRepo:   mocks.NewMockUserRepository(ctrl),
		assetRepo:  mocks.NewMockAssetTypeRepository(ctrl),
		walletRepo: mocks.NewMockWalletRepository(ctrl),
	}
	d.svc = NewRegistryService(d.userRepo, d.assetRepo, d.walletRepo, newTestLogger())
	return d
}

func TestRegistryService_CreateUser_OpensWallets(t *testing.T) {
	d := setupRegistryService(t)
	ctx := context.Background()
	gold := domain.AssetType{ID: uuid.New(), Name: "Gold Coins"}
	points := domain.AssetType{ID: uuid.New(), Name: "Reward Points"}

	d.userRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.assetRepo.EXPECT().List(ctx).Return([]domain.AssetType{gold, points}, nil)
	d.walletRepo.EXPECT().EnsureZero(ctx, gomock.Any(), gold.ID).Return(nil)
	d.walletRepo.EXPECT().EnsureZero(ctx, gomock.Any(), points.ID).Return(errors.New("timeout"))

	user, err := d.svc.CreateUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestRegistryService_CreateUser_Duplicate(t *testing.T) {
	d := setupRegistryService(t)
	ctx := context.Background()

	d.userRepo.EXPECT().Create(ctx, gomock.Any()).Return(ports.ErrConflict)

	_, err := d.svc.CreateUser(ctx, "alice")
	assertAppError(t, err, apperror.CodeConflict)
}

func TestRegistryService_CreateUser_InvalidName(t *testing.T) {
	d := setupRegistryService(t)

	_, err := d.svc.CreateUser(context.Background(), "")
	assertAppError(t, err, apperror.CodeValidation)

	_, err = d.svc.CreateUser(context.Background(), " alice")
	assertAppError(t, err, apperror.CodeValidation)
}

func TestRegistryService_CreateAssetType(t *testing.T) {
	d := setupRegistryService(t)
	ctx := context.Background()

	d.assetRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	asset, err := d.svc.CreateAssetType(ctx, "Loyalty Points")
	require.NoError(t, err)
	assert.Equal(t, "Loyalty Points", asset.Name)

	d.assetRepo.EXPECT().Create(ctx, gomock.Any()).Return(ports.ErrConflict)
	_, err = d.svc.CreateAssetType(ctx, "Loyalty Points")
	assertAppError(t, err, apperror.CodeConflict)

	_, err = d.svc.CreateAssetType(ctx, "Gold ")
	assertAppError(t, err, apperror.CodeValidation)
}

func TestRegistryService_SeedAssetTypes(t *testing.T) {
	d := setupRegistryService(t)
	ctx := context.Background()

	d.assetRepo.EXPECT().GetByName(ctx, "Gold Coins").Return(&domain.AssetType{ID: uuid.New(), Name: "Gold Coins"}, nil)
	d.assetRepo.EXPECT().GetByName(ctx, "Reward Points").Return(nil, nil)
	d.assetRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.AssetType) error {
		assert.Equal(t, "Reward Points", a.Name)
		return nil
	})

	require.NoError(t, d.svc.SeedAssetTypes(ctx, []string{"Gold Coins", "Reward Points"}))
}

func TestRegistryService_SeedAssetTypes_IgnoresConcurrentCreate(t *testing.T) {
	d := setupRegistryService(t)
	ctx := context.Background()

	d.assetRepo.EXPECT().GetByName(ctx, "Gold Coins").Return(nil, nil)
	d.assetRepo.EXPECT().Create(ctx, gomock.Any()).Return(ports.ErrConflict)

	require.NoError(t, d.svc.SeedAssetTypes(ctx, []string{"Gold Coins"}))
}

func TestRegistryService_ListUsers_Empty(t *testing.T) {
	d := setupRegistryService(t)
	ctx := context.Background()

	d.userRepo.EXPECT().List(ctx).Return(nil, nil)

	users, err := d.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}
