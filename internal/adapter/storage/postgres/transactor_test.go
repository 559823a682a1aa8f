package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactor_Commit(t *testing.T) {
	mock := newMockPool(t)
	transactor := NewTransactor(mock)
	wallets := NewWalletRepo(mock)
	userID, assetID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(pgxmock.AnyArg(), userID, assetID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := transactor.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return wallets.EnsureZero(ctx, userID, assetID)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollbackReturnsFnError(t *testing.T) {
	mock := newMockPool(t)
	transactor := NewTransactor(mock)
	wallets := NewWalletRepo(mock)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO wallets").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "5").
		WillReturnRows(walletRows())
	mock.ExpectRollback()

	err := transactor.WithinTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := wallets.ApplyDelta(ctx, uuid.New(), uuid.New(), decimal.NewFromInt(5), true); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_NestedJoinsOuter(t *testing.T) {
	mock := newMockPool(t)
	transactor := NewTransactor(mock)

	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := transactor.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return transactor.WithinTransaction(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_BeginFailure(t *testing.T) {
	mock := newMockPool(t)
	transactor := NewTransactor(mock)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	err := transactor.WithinTransaction(context.Background(), func(context.Context) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorContains(t, err, "begin tx")
}
