package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestIdempotencyLedger_RememberThenCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockIdempotencyCache(ctrl)
	l := NewIdempotencyLedger(mocks.NewMockTransactionRepository(ctrl), cache, time.Minute, newTestLogger())
	ctx := context.Background()
	tx := &domain.Transaction{
		ID:             uuid.New(),
		Kind:           domain.TransactionKindBonus,
		Amount:         dec("2.25"),
		IdempotencyKey: uuid.NewString(),
		BalanceAfter:   dec("9.75"),
		Mode:           domain.AtomicityFallback,
	}

	var stored []byte
	cache.EXPECT().Set(ctx, tx.IdempotencyKey, gomock.Any(), time.Minute).DoAndReturn(
		func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			stored = value
			return nil
		},
	)
	l.Remember(ctx, tx)

	cache.EXPECT().Get(ctx, tx.IdempotencyKey).Return(stored, nil)
	got := l.Cached(ctx, tx.IdempotencyKey)
	require.NotNil(t, got)
	assert.Equal(t, tx.ID, got.ID)
	assert.True(t, got.BalanceAfter.Equal(tx.BalanceAfter))
	assert.Equal(t, domain.AtomicityFallback, got.Mode)
}

func TestIdempotencyLedger_CachedDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockIdempotencyCache(ctrl)
	l := NewIdempotencyLedger(mocks.NewMockTransactionRepository(ctrl), cache, 0, newTestLogger())
	ctx := context.Background()

	cache.EXPECT().Get(ctx, "k1").Return(nil, errors.New("breaker open"))
	assert.Nil(t, l.Cached(ctx, "k1"))

	cache.EXPECT().Get(ctx, "k2").Return([]byte("{not json"), nil)
	assert.Nil(t, l.Cached(ctx, "k2"))

	cache.EXPECT().Get(ctx, "k3").Return(nil, nil)
	assert.Nil(t, l.Cached(ctx, "k3"))
}

func TestIdempotencyLedger_NilCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	l := NewIdempotencyLedger(txRepo, nil, 0, newTestLogger())
	ctx := context.Background()

	assert.Nil(t, l.Cached(ctx, "k"))
	l.Remember(ctx, &domain.Transaction{ID: uuid.New()})

	txRepo.EXPECT().GetByIdempotencyKey(ctx, "k").Return(nil, errors.New("down"))
	_, err := l.FindByKey(ctx, "k")
	assert.Error(t, err)
}
