// Package app wires configuration, storage, services and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"

	"internal-wallet-service/config"
	httpHandler "internal-wallet-service/internal/adapter/http/handler"
	redisStorage "internal-wallet-service/internal/adapter/storage/redis"
	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/internal/service"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App is a fully wired service.
type App struct {
	Router   *gin.Engine
	Ledger   ports.LedgerService
	Registry ports.RegistryService
	Query    ports.WalletQueryService

	stores *stores
	redis  *goredis.Client
	log    zerolog.Logger
}

// New opens the configured store and Redis, seeds default asset types and
// builds the router.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	mode, err := domain.ParseAtomicityMode(cfg.Ledger.Atomicity)
	if err != nil {
		return nil, err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	a := &App{stores: st, log: log}

	var (
		cache     ports.IdempotencyCache
		rateStore *redisStorage.RateLimitStore
		health    = append([]ports.HealthChecker{}, st.health...)
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.redis = rdb
		cache = redisStorage.NewBreakerCache(redisStorage.NewIdempotencyCache(rdb, cfg.Redis.KeyPrefix), "idempotency_cache", cfg.Breaker, log)
		rateStore = redisStorage.NewRateLimitStore(rdb, cfg.Redis.KeyPrefix)
		health = append(health, redisStorage.NewHealthCheck(rdb))
	}

	resolver := service.NewEntityResolver(st.users, st.assets)
	auditSvc := service.NewAuditService(st.audits, log)
	idemp := service.NewIdempotencyLedger(st.txs, cache, cfg.Ledger.IdempotencyTTL, log)

	a.Ledger = service.NewLedgerService(resolver, st.wallets, st.txs, idemp, st.transactor, auditSvc, mode, log)
	a.Registry = service.NewRegistryService(st.users, st.assets, st.wallets, log)
	a.Query = service.NewWalletQueryService(resolver, st.wallets, st.assets, st.txs, cfg.Ledger.HistoryLimit)

	if err := a.Registry.SeedAssetTypes(ctx, cfg.Ledger.SeedAssets); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("seeding asset types: %w", err)
	}

	a.Router = httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      a.Ledger,
		QuerySvc:       a.Query,
		RegistrySvc:    a.Registry,
		AuditSvc:       auditSvc,
		RateLimitStore: rateStore,
		HealthCheckers: health,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Mode:           cfg.Server.Mode,
		Logger:         log,
	})

	log.Info().
		Str("store", cfg.Store.Driver).
		Str("atomicity", string(mode)).
		Bool("redis", cfg.Redis.Enabled).
		Msg("ledger service wired")

	return a, nil
}

// Close releases Redis and the store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.stores != nil && a.stores.close != nil {
		errs = append(errs, a.stores.close(ctx))
	}
	return errors.Join(errs...)
}
