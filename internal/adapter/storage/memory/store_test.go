package memory

import (
	"context"
	"errors"
	"testing"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWalletRepo_ApplyDelta(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepo(NewStore(true))
	userID, assetID := uuid.New(), uuid.New()

	t.Run("debit on missing wallet matches nothing", func(t *testing.T) {
		w, err := repo.ApplyDelta(ctx, userID, assetID, dec("-1"), false)
		require.NoError(t, err)
		assert.Nil(t, w)
	})

	t.Run("credit without allowCreate matches nothing", func(t *testing.T) {
		w, err := repo.ApplyDelta(ctx, userID, assetID, dec("10"), false)
		require.NoError(t, err)
		assert.Nil(t, w)
	})

	t.Run("credit creates wallet", func(t *testing.T) {
		w, err := repo.ApplyDelta(ctx, userID, assetID, dec("10"), true)
		require.NoError(t, err)
		require.NotNil(t, w)
		assert.True(t, w.Balance.Equal(dec("10")))
	})

	t.Run("overdraft rejected and balance unchanged", func(t *testing.T) {
		w, err := repo.ApplyDelta(ctx, userID, assetID, dec("-10.01"), false)
		require.NoError(t, err)
		assert.Nil(t, w)

		got, err := repo.GetByOwner(ctx, userID, assetID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(dec("10")))
	})

	t.Run("debit to exactly zero", func(t *testing.T) {
		w, err := repo.ApplyDelta(ctx, userID, assetID, dec("-10"), false)
		require.NoError(t, err)
		require.NotNil(t, w)
		assert.True(t, w.Balance.IsZero())
	})
}

func TestWalletRepo_EnsureZero(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepo(NewStore(true))
	userID, assetID := uuid.New(), uuid.New()

	_, err := repo.ApplyDelta(ctx, userID, assetID, dec("5"), true)
	require.NoError(t, err)

	require.NoError(t, repo.EnsureZero(ctx, userID, assetID))
	require.NoError(t, repo.EnsureZero(ctx, userID, uuid.New()))

	wallets, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.True(t, wallets[0].Balance.Equal(dec("5")))
	assert.True(t, wallets[1].Balance.IsZero())
}

func TestTransactionRepo_AppendDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepo(NewStore(true))
	key := uuid.NewString()

	require.NoError(t, repo.Append(ctx, &domain.Transaction{ID: uuid.New(), IdempotencyKey: key}))
	err := repo.Append(ctx, &domain.Transaction{ID: uuid.New(), IdempotencyKey: key})
	assert.ErrorIs(t, err, ports.ErrDuplicateIdempotencyKey)

	got, err := repo.GetByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)

	missing, err := repo.GetByIdempotencyKey(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTransactionRepo_ListByWallets(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepo(NewStore(true))
	a, b, other := uuid.New(), uuid.New(), uuid.New()

	for i, w := range []uuid.UUID{a, other, b, a} {
		require.NoError(t, repo.Append(ctx, &domain.Transaction{
			ID:             uuid.New(),
			WalletID:       w,
			Amount:         decimal.NewFromInt(int64(i)),
			IdempotencyKey: uuid.NewString(),
		}))
	}

	got, err := repo.ListByWallets(ctx, []uuid.UUID{a, b}, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(3)))
	assert.True(t, got[1].Amount.Equal(decimal.NewFromInt(2)))
	assert.True(t, got[2].Amount.Equal(decimal.NewFromInt(0)))

	limited, err := repo.ListByWallets(ctx, []uuid.UUID{a, b}, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTransactor_RollbackUndoesAllSteps(t *testing.T) {
	ctx := context.Background()
	store := NewStore(true)
	wallets := NewWalletRepo(store)
	txs := NewTransactionRepo(store)
	transactor := NewTransactor(store)
	userID, assetID := uuid.New(), uuid.New()
	key := uuid.NewString()

	boom := errors.New("boom")
	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := wallets.ApplyDelta(ctx, userID, assetID, dec("25"), true)
		require.NoError(t, err)
		require.NoError(t, txs.Append(ctx, &domain.Transaction{ID: uuid.New(), WalletID: w.ID, IdempotencyKey: key}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	w, err := wallets.GetByOwner(ctx, userID, assetID)
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.Zero(t, store.TransactionCount())
}

func TestTransactor_RollbackRestoresBalance(t *testing.T) {
	ctx := context.Background()
	store := NewStore(true)
	wallets := NewWalletRepo(store)
	transactor := NewTransactor(store)
	userID, assetID := uuid.New(), uuid.New()

	_, err := wallets.ApplyDelta(ctx, userID, assetID, dec("100"), true)
	require.NoError(t, err)

	_ = transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := wallets.ApplyDelta(ctx, userID, assetID, dec("-40"), false)
		require.NoError(t, err)
		return errors.New("abort")
	})

	w, err := wallets.GetByOwner(ctx, userID, assetID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(dec("100")))
}

func TestTransactor_Unsupported(t *testing.T) {
	transactor := NewTransactor(NewStore(false))
	called := false

	err := transactor.WithinTransaction(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ports.ErrAtomicUnitsUnsupported)
	assert.False(t, called)
}

func TestUserRepo_Conflict(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(NewStore(true))

	require.NoError(t, repo.Create(ctx, &domain.User{ID: uuid.New(), Username: "alice"}))
	err := repo.Create(ctx, &domain.User{ID: uuid.New(), Username: "alice"})
	assert.ErrorIs(t, err, ports.ErrConflict)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAssetTypeRepo_ExactNameMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetTypeRepo(NewStore(true))

	require.NoError(t, repo.Create(ctx, &domain.AssetType{ID: uuid.New(), Name: "Gold Coins"}))

	got, err := repo.GetByName(ctx, "gold coins")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByName(ctx, "Gold Coins")
	require.NoError(t, err)
	require.NotNil(t, got)
}
