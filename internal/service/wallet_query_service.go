package service

import (
	"context"
	"fmt"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/pkg/apperror"

	"github.com/google/uuid"
)

// MaxHistoryLimit caps the number of history entries per request.
const MaxHistoryLimit = 100

// walletQueryService implements ports.WalletQueryService.
type walletQueryService struct {
	resolver     ports.EntityResolver
	walletRepo   ports.WalletRepository
	assetRepo    ports.AssetTypeRepository
	txRepo       ports.TransactionRepository
	defaultLimit int
}

// NewWalletQueryService creates a new wallet query service.
func NewWalletQueryService(
	resolver ports.EntityResolver,
	walletRepo ports.WalletRepository,
	assetRepo ports.AssetTypeRepository,
	txRepo ports.TransactionRepository,
	defaultLimit int,
) ports.WalletQueryService {
	if defaultLimit <= 0 || defaultLimit > MaxHistoryLimit {
		defaultLimit = 20
	}
	return &walletQueryService{
		resolver:     resolver,
		walletRepo:   walletRepo,
		assetRepo:    assetRepo,
		txRepo:       txRepo,
		defaultLimit: defaultLimit,
	}
}

// GetBalances returns every wallet of the user with its asset type name.
func (s *walletQueryService) GetBalances(ctx context.Context, userIdentifier string) ([]domain.WalletBalance, error) {
	user, err := s.resolver.ResolveUser(ctx, userIdentifier)
	if err != nil {
		return nil, err
	}

	wallets, err := s.walletRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list wallets: %w", err))
	}
	names, err := s.assetNames(ctx)
	if err != nil {
		return nil, err
	}

	balances := make([]domain.WalletBalance, 0, len(wallets))
	for _, w := range wallets {
		balances = append(balances, domain.WalletBalance{
			WalletID:  w.ID,
			AssetType: names[w.AssetTypeID],
			Balance:   w.Balance,
		})
	}
	return balances, nil
}

// GetHistory returns the user's most recent transactions across all wallets.
func (s *walletQueryService) GetHistory(ctx context.Context, userIdentifier string, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	user, err := s.resolver.ResolveUser(ctx, userIdentifier)
	if err != nil {
		return nil, err
	}

	wallets, err := s.walletRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list wallets: %w", err))
	}
	if len(wallets) == 0 {
		return []domain.HistoryEntry{}, nil
	}

	walletAsset := make(map[uuid.UUID]uuid.UUID, len(wallets))
	ids := make([]uuid.UUID, 0, len(wallets))
	for _, w := range wallets {
		walletAsset[w.ID] = w.AssetTypeID
		ids = append(ids, w.ID)
	}

	txs, err := s.txRepo.ListByWallets(ctx, ids, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	names, err := s.assetNames(ctx)
	if err != nil {
		return nil, err
	}

	history := make([]domain.HistoryEntry, 0, len(txs))
	for _, tx := range txs {
		history = append(history, domain.HistoryEntry{
			TransactionID: tx.ID,
			WalletID:      tx.WalletID,
			AssetType:     names[walletAsset[tx.WalletID]],
			Kind:          tx.Kind,
			Amount:        tx.Amount,
			Description:   tx.Description,
			CreatedAt:     tx.CreatedAt,
		})
	}
	return history, nil
}

func (s *walletQueryService) assetNames(ctx context.Context) (map[uuid.UUID]string, error) {
	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list asset types: %w", err))
	}
	names := make(map[uuid.UUID]string, len(assets))
	for _, a := range assets {
		names[a.ID] = a.Name
	}
	return names, nil
}
