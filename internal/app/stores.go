package app

import (
	"context"
	"fmt"

	"internal-wallet-service/config"
	"internal-wallet-service/internal/adapter/storage/memory"
	mongoStorage "internal-wallet-service/internal/adapter/storage/mongo"
	pgStorage "internal-wallet-service/internal/adapter/storage/postgres"
	"internal-wallet-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// stores is the persistence layer selected by store.driver.
type stores struct {
	users      ports.UserRepository
	assets     ports.AssetTypeRepository
	wallets    ports.WalletRepository
	txs        ports.TransactionRepository
	audits     ports.AuditRepository
	transactor ports.Transactor
	health     []ports.HealthChecker
	close      func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	case config.DriverMemory:
		return openMemory(cfg, log), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Database.Migrate {
		if err := pgStorage.Migrate(cfg.Database.MigrateURL(), log); err != nil {
			return nil, err
		}
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	return &stores{
		users:      pgStorage.NewUserRepo(pool),
		assets:     pgStorage.NewAssetTypeRepo(pool),
		wallets:    pgStorage.NewWalletRepo(pool),
		txs:        pgStorage.NewTransactionRepo(pool),
		audits:     pgStorage.NewAuditRepository(pool),
		transactor: pgStorage.NewTransactor(pool),
		health:     []ports.HealthChecker{pgStorage.NewHealthCheck(pool)},
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	store, err := mongoStorage.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	return &stores{
		users:      mongoStorage.NewUserRepo(store),
		assets:     mongoStorage.NewAssetTypeRepo(store),
		wallets:    mongoStorage.NewWalletRepo(store),
		txs:        mongoStorage.NewTransactionRepo(store),
		audits:     mongoStorage.NewAuditRepo(store),
		transactor: mongoStorage.NewTransactor(store, log),
		health:     []ports.HealthChecker{mongoStorage.NewHealthCheck(store)},
		close:      store.Close,
	}, nil
}

// openMemory backs the service with process memory. The memory store runs
// atomic units unless the ledger is configured for fallback mode.
func openMemory(cfg *config.Config, log zerolog.Logger) *stores {
	store := memory.NewStore(cfg.Ledger.Atomicity != "fallback")
	log.Warn().Msg("using in-memory store; data is lost on restart")

	return &stores{
		users:      memory.NewUserRepo(store),
		assets:     memory.NewAssetTypeRepo(store),
		wallets:    memory.NewWalletRepo(store),
		txs:        memory.NewTransactionRepo(store),
		audits:     memory.NewAuditRepo(store),
		transactor: memory.NewTransactor(store),
		close:      func(context.Context) error { return nil },
	}
}
