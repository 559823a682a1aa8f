package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/rs/zerolog"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyLedger answers "was this key already committed?". The
// transaction log's unique index is authoritative; the cache is an optional
// fast path whose errors degrade to the log read.
type IdempotencyLedger struct {
	txRepo ports.TransactionRepository
	cache  ports.IdempotencyCache
	ttl    time.Duration
	log    zerolog.Logger
}

// NewIdempotencyLedger creates a new IdempotencyLedger. cache may be nil.
func NewIdempotencyLedger(txRepo ports.TransactionRepository, cache ports.IdempotencyCache, ttl time.Duration, log zerolog.Logger) *IdempotencyLedger {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyLedger{txRepo: txRepo, cache: cache, ttl: ttl, log: log}
}

// FindByKey returns the committed entry for key, or nil.
func (l *IdempotencyLedger) FindByKey(ctx context.Context, key string) (*domain.Transaction, error) {
	tx, err := l.txRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find transaction by idempotency key: %w", err)
	}
	return tx, nil
}

// Cached returns the entry remembered in the cache, or nil on miss or error.
func (l *IdempotencyLedger) Cached(ctx context.Context, key string) *domain.Transaction {
	if l.cache == nil {
		return nil
	}

	data, err := l.cache.Get(ctx, key)
	if err != nil {
		l.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency cache lookup failed, falling through to store")
		return nil
	}
	if data == nil {
		return nil
	}

	tx := &domain.Transaction{}
	if err := json.Unmarshal(data, tx); err != nil {
		l.log.Warn().Err(err).Str("idempotency_key", key).Msg("discarding malformed idempotency cache entry")
		return nil
	}
	return tx
}

// Remember caches a committed entry (best-effort).
func (l *IdempotencyLedger) Remember(ctx context.Context, tx *domain.Transaction) {
	if l.cache == nil {
		return
	}

	data, err := json.Marshal(tx)
	if err != nil {
		l.log.Warn().Err(err).Str("tx_id", tx.ID.String()).Msg("failed to encode transaction for idempotency cache")
		return
	}
	if err := l.cache.Set(ctx, tx.IdempotencyKey, data, l.ttl); err != nil {
		l.log.Warn().Err(err).Str("idempotency_key", tx.IdempotencyKey).Msg("failed to cache idempotency entry")
	}
}
