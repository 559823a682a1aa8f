package handler

import (
	"internal-wallet-service/internal/adapter/http/middleware"
	redisStore "internal-wallet-service/internal/adapter/storage/redis"
	"internal-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	QuerySvc       ports.WalletQueryService
	RegistrySvc    ports.RegistryService
	AuditSvc       ports.AuditService         // nil = audit logging disabled
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	MaxBodyBytes   int64
	Mode           string // gin mode; empty = release
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(maxBody))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()

	// Return the group's rate limiter when a store is configured, else a noop.
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	walletHandler := NewWalletHandler(deps.QuerySvc)
	wallet := v1.Group("/wallet")
	{
		wallet.POST("/topup", rl(middleware.GroupLedger), ledgerHandler.Topup)
		wallet.POST("/bonus", rl(middleware.GroupLedger), ledgerHandler.Bonus)
		wallet.POST("/spend", rl(middleware.GroupLedger), ledgerHandler.Spend)
		wallet.GET("/:user", rl(middleware.GroupQuery), walletHandler.GetBalances)
	}
	v1.GET("/transactions/:user", rl(middleware.GroupQuery), walletHandler.GetHistory)

	registryHandler := NewRegistryHandler(deps.RegistrySvc)
	users := v1.Group("/users")
	{
		users.POST("", rl(middleware.GroupRegistry), registryHandler.CreateUser)
		users.GET("", rl(middleware.GroupQuery), registryHandler.ListUsers)
	}
	assets := v1.Group("/assets")
	{
		assets.POST("", rl(middleware.GroupRegistry), registryHandler.CreateAssetType)
		assets.GET("", rl(middleware.GroupQuery), registryHandler.ListAssetTypes)
	}

	return r
}
