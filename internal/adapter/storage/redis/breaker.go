package redis

import (
	"context"
	"time"

	"internal-wallet-service/config"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// BreakerCache guards an idempotency cache with a circuit breaker so that an
// unavailable Redis stops costing a network round trip per request. While the
// breaker is open, calls fail immediately with gobreaker.ErrOpenState and the
// caller falls through to the transaction log.
type BreakerCache struct {
	inner ports.IdempotencyCache
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerCache wraps inner with a breaker named name.
func NewBreakerCache(inner ports.IdempotencyCache, name string, cfg config.BreakerConfig, log zerolog.Logger) *BreakerCache {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.SetBreakerState(name, float64(to))
		},
	}
	metrics.SetBreakerState(name, float64(gobreaker.StateClosed))

	return &BreakerCache{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Get returns the cached entry; a miss is not a failure.
func (b *BreakerCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	val, _ := v.([]byte)
	return val, nil
}

func (b *BreakerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.Set(ctx, key, value, ttl)
	})
	return err
}

// State reports the breaker state.
func (b *BreakerCache) State() gobreaker.State {
	return b.cb.State()
}

var _ ports.IdempotencyCache = (*BreakerCache)(nil)
