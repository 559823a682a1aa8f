package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"internal-wallet-service/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyCache implements ports.IdempotencyCache using Redis. Values are
// committed transaction entries keyed by the normalized idempotency key,
// under "<namespace>idempotency:".
type IdempotencyCache struct {
	client *goredis.Client
	prefix string
}

// NewIdempotencyCache creates a Redis-backed idempotency cache. namespace
// separates deployments sharing one Redis; it may be empty.
func NewIdempotencyCache(client *goredis.Client, namespace string) *IdempotencyCache {
	return &IdempotencyCache{
		client: client,
		prefix: namespace + "idempotency:",
	}
}

// Key returns the Redis key holding the entry for an idempotency key.
func (c *IdempotencyCache) Key(idempotencyKey string) string {
	return c.prefix + idempotencyKey
}

// Get retrieves a cached entry by idempotency key.
// Returns nil, nil if the key does not exist.
func (c *IdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis idempotency get: %w", err)
	}
	return val, nil
}

// Set stores an entry in the idempotency cache with TTL. Entries are
// immutable once committed, so an empty value is refused rather than cached
// as a phantom hit.
func (c *IdempotencyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) == 0 {
		return fmt.Errorf("redis idempotency set: empty entry for %s", key)
	}
	if err := c.client.Set(ctx, c.Key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}

var _ ports.IdempotencyCache = (*IdempotencyCache)(nil)
