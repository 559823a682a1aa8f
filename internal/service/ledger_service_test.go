package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/internal/core/ports/mocks"
	"internal-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	resolver   *mocks.MockEntityResolver
	walletRepo *mocks.MockWalletRepository
	txRepo     *mocks.MockTransactionRepository
	cache      *mocks.MockIdempotencyCache
	transactor *mocks.MockTransactor
	audit      *mocks.MockAuditService
	ctrl       *gomock.Controller

	user  *domain.User
	asset *domain.AssetType
}

func setupLedgerService(t *testing.T, mode domain.AtomicityMode) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		resolver:   mocks.NewMockEntityResolver(ctrl),
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		cache:      mocks.NewMockIdempotencyCache(ctrl),
		transactor: mocks.NewMockTransactor(ctrl),
		audit:      mocks.NewMockAuditService(ctrl),
		ctrl:       ctrl,
		user:       &domain.User{ID: uuid.New(), Username: "alice"},
		asset:      &domain.AssetType{ID: uuid.New(), Name: "Gold Coins"},
	}
	idemp := NewIdempotencyLedger(d.txRepo, d.cache, time.Hour, newTestLogger())
	d.svc = NewLedgerService(d.resolver, d.walletRepo, d.txRepo, idemp, d.transactor, d.audit, mode, newTestLogger())
	return d
}

func (d *ledgerTestDeps) request(kind domain.TransactionKind, amount string) ports.SubmitRequest {
	return ports.SubmitRequest{
		Kind:           kind,
		UserIdentifier: "alice",
		AssetTypeName:  "Gold Coins",
		Amount:         dec(amount),
		IdempotencyKey: uuid.NewString(),
	}
}

func (d *ledgerTestDeps) wallet(balance string) *domain.Wallet {
	return &domain.Wallet{ID: uuid.New(), UserID: d.user.ID, AssetTypeID: d.asset.ID, Balance: dec(balance)}
}

// ==================== Validation ====================

func TestLedgerService_Submit_ValidationTouchesNoStore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ports.SubmitRequest)
		code   string
	}{
		{"zero amount", func(r *ports.SubmitRequest) { r.Amount = dec("0") }, apperror.CodeInvalidAmount},
		{"negative amount", func(r *ports.SubmitRequest) { r.Amount = dec("-5") }, apperror.CodeInvalidAmount},
		{"too many fraction digits", func(r *ports.SubmitRequest) {
			r.Amount = dec("1.00000000000000000000000000000000001")
		}, apperror.CodeInvalidAmount},
		{"too many integer digits", func(r *ports.SubmitRequest) {
			r.Amount = dec("123456789012345678901234567890123456")
		}, apperror.CodeInvalidAmount},
		{"unknown kind", func(r *ports.SubmitRequest) { r.Kind = "REFUND" }, apperror.CodeValidation},
		{"bad idempotency key", func(r *ports.SubmitRequest) { r.IdempotencyKey = "order-1" }, apperror.CodeValidation},
		{"empty user", func(r *ports.SubmitRequest) { r.UserIdentifier = "" }, apperror.CodeValidation},
		{"empty asset", func(r *ports.SubmitRequest) { r.AssetTypeName = "" }, apperror.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No EXPECT calls: any store or cache access fails the test.
			d := setupLedgerService(t, domain.AtomicityFull)
			req := d.request(domain.TransactionKindTopup, "10")
			tt.mutate(&req)

			out, err := d.svc.Submit(context.Background(), req)
			assert.Nil(t, out)
			assertAppError(t, err, tt.code)
			assert.True(t, apperror.IsRejected(err))
		})
	}
}

// ==================== Full mode ====================

func TestLedgerService_Submit_TopupApplied(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindTopup, "25.50")
	wallet := d.wallet("125.50")

	d.cache.EXPECT().Get(ctx, req.IdempotencyKey).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(runUnit)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, req.IdempotencyKey).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, decEq("25.50"), true).Return(wallet, nil)

	var appended *domain.Transaction
	d.txRepo.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, tx *domain.Transaction) error {
		appended = tx
		return nil
	})
	d.cache.EXPECT().Set(ctx, req.IdempotencyKey, gomock.Any(), time.Hour).Return(nil)

	out, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.True(t, out.Balance.Equal(dec("125.50")))
	assert.Equal(t, domain.AtomicityFull, out.Mode)

	require.NotNil(t, appended)
	assert.Equal(t, appended.ID, out.TransactionID)
	assert.Equal(t, wallet.ID, appended.WalletID)
	assert.Equal(t, "TOPUP", appended.Description)
	assert.True(t, appended.Amount.Equal(dec("25.50")))
	assert.True(t, appended.BalanceAfter.Equal(dec("125.50")))
}

func TestLedgerService_Submit_SpendUsesNegativeDeltaWithoutCreate(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindSpend, "30")
	req.Description = "sword"

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(runUnit)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, gomock.Any()).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, decEq("-30"), false).Return(d.wallet("70"), nil)
	d.txRepo.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, tx *domain.Transaction) error {
		assert.Equal(t, "sword", tx.Description)
		assert.True(t, tx.Amount.Equal(dec("-30")))
		return nil
	})
	d.cache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	out, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.True(t, out.Balance.Equal(dec("70")))
}

func TestLedgerService_Submit_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindSpend, "200")

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(runUnit)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, gomock.Any()).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, decEq("-200"), false).Return(nil, nil)
	d.walletRepo.EXPECT().GetByOwner(ctx, d.user.ID, d.asset.ID).Return(d.wallet("100"), nil)

	out, err := d.svc.Submit(ctx, req)
	assert.Nil(t, out)
	assertAppError(t, err, apperror.CodeInsufficientFunds)
	assert.Contains(t, err.Error(), "Insufficient balance")
}

func TestLedgerService_Submit_SpendWithoutWallet(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(runUnit)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, gomock.Any()).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, gomock.Any(), false).Return(nil, nil)
	d.walletRepo.EXPECT().GetByOwner(ctx, d.user.ID, d.asset.ID).Return(nil, nil)

	_, err := d.svc.Submit(ctx, d.request(domain.TransactionKindSpend, "1"))
	assertAppError(t, err, apperror.CodeInsufficientFunds)
	assert.Contains(t, err.Error(), "Wallet not found")
}

func TestLedgerService_Submit_UnknownUser(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(runUnit)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, gomock.Any()).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(nil, nil, apperror.ErrNotFound("user"))

	_, err := d.svc.Submit(ctx, d.request(domain.TransactionKindTopup, "1"))
	assertAppError(t, err, apperror.CodeNotFound)
}

func TestLedgerService_Submit_ReplayFromLog(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindBonus, "5")
	existing := &domain.Transaction{
		ID:             uuid.New(),
		Kind:           domain.TransactionKindBonus,
		Amount:         dec("5"),
		IdempotencyKey: req.IdempotencyKey,
		BalanceAfter:   dec("40"),
		Mode:           domain.AtomicityFull,
	}

	d.cache.EXPECT().Get(ctx, req.IdempotencyKey).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(runUnit)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, req.IdempotencyKey).Return(existing, nil)
	d.cache.EXPECT().Set(ctx, req.IdempotencyKey, gomock.Any(), time.Hour).Return(nil)

	out, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, out.TransactionID)
	assert.True(t, out.Balance.Equal(dec("40")))
}

func TestLedgerService_Submit_ReplayFromCache(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindTopup, "5")
	cached := &domain.Transaction{
		ID:             uuid.New(),
		Kind:           domain.TransactionKindTopup,
		Amount:         dec("5"),
		IdempotencyKey: req.IdempotencyKey,
		BalanceAfter:   dec("15"),
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	var logs bytes.Buffer
	d.svc.log = zerolog.New(&logs)
	d.cache.EXPECT().Get(ctx, req.IdempotencyKey).Return(data, nil)

	out, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, cached.ID, out.TransactionID)
	assert.True(t, out.Balance.Equal(dec("15")))
	assert.NotContains(t, logs.String(), "different payload")
}

func TestLedgerService_Submit_CacheReplayWarnsOnPayloadMismatch(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindSpend, "7")
	cached := &domain.Transaction{
		ID:             uuid.New(),
		Kind:           domain.TransactionKindTopup,
		Amount:         dec("5"),
		IdempotencyKey: req.IdempotencyKey,
		BalanceAfter:   dec("15"),
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	var logs bytes.Buffer
	d.svc.log = zerolog.New(&logs)
	d.cache.EXPECT().Get(ctx, req.IdempotencyKey).Return(data, nil)

	out, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, cached.ID, out.TransactionID)
	assert.True(t, out.Balance.Equal(dec("15")))
	assert.Contains(t, logs.String(), "different payload")
	assert.Contains(t, logs.String(), `"recorded_kind":"TOPUP"`)
}

func TestLedgerService_Submit_UnrepresentableAmountIsRejected(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindTopup, "10")

	d.cache.EXPECT().Get(ctx, req.IdempotencyKey).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(runUnit)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, req.IdempotencyKey).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, decEq("10"), true).
		Return(nil, fmt.Errorf("apply wallet delta: %w", domain.ErrAmountPrecision))

	out, err := d.svc.Submit(ctx, req)
	assert.Nil(t, out)
	assertAppError(t, err, apperror.CodeInvalidAmount)
	assert.True(t, apperror.IsRejected(err))
}

func TestLedgerService_Submit_CacheErrorDegradesToStore(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindTopup, "5")
	existing := &domain.Transaction{ID: uuid.New(), Kind: domain.TransactionKindTopup, Amount: dec("5"), IdempotencyKey: req.IdempotencyKey}

	d.cache.EXPECT().Get(ctx, req.IdempotencyKey).Return(nil, errors.New("redis down"))
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(runUnit)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, req.IdempotencyKey).Return(existing, nil)
	d.cache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	out, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, out.TransactionID)
}

func TestLedgerService_Submit_FullModeLostRaceRollsBackAndReplays(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindTopup, "10")
	winner := &domain.Transaction{ID: uuid.New(), Kind: domain.TransactionKindTopup, Amount: dec("10"), IdempotencyKey: req.IdempotencyKey, BalanceAfter: dec("110")}

	var unitErr error
	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			unitErr = fn(ctx)
			return unitErr
		},
	)
	gomock.InOrder(
		d.txRepo.EXPECT().GetByIdempotencyKey(ctx, req.IdempotencyKey).Return(nil, nil),
		d.txRepo.EXPECT().GetByIdempotencyKey(ctx, req.IdempotencyKey).Return(winner, nil),
	)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, decEq("10"), true).Return(d.wallet("120"), nil)
	d.txRepo.EXPECT().Append(ctx, gomock.Any()).Return(ports.ErrDuplicateIdempotencyKey)
	d.cache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	out, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.ErrorIs(t, unitErr, errLostRace, "unit must roll back")
	assert.Equal(t, winner.ID, out.TransactionID)
	assert.True(t, out.Balance.Equal(dec("110")))
}

func TestLedgerService_Submit_FullModeAppendFailure(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).DoAndReturn(runUnit)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, gomock.Any()).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, gomock.Any(), true).Return(d.wallet("1"), nil)
	d.txRepo.EXPECT().Append(ctx, gomock.Any()).Return(errors.New("connection reset"))

	_, err := d.svc.Submit(ctx, d.request(domain.TransactionKindTopup, "1"))
	assertAppError(t, err, apperror.CodeInternal)
	assert.True(t, apperror.IsFailed(err))
}

func TestLedgerService_Submit_TransactorFailureIsRetryable(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).Return(errors.New("begin tx: pool closed"))

	_, err := d.svc.Submit(ctx, d.request(domain.TransactionKindTopup, "1"))
	assertAppError(t, err, apperror.CodeInternal)
	assert.True(t, apperror.IsFailed(err))
}

// ==================== Fallback ====================

func TestLedgerService_Submit_UnsupportedUnitsFallsBackOnce(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()
	req := d.request(domain.TransactionKindTopup, "10")

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).Return(ports.ErrAtomicUnitsUnsupported).Times(1)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, gomock.Any()).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, decEq("10"), true).Return(d.wallet("10"), nil)
	d.txRepo.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, tx *domain.Transaction) error {
		assert.Equal(t, domain.AtomicityFallback, tx.Mode)
		return nil
	})
	d.audit.EXPECT().Log(ctx, gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionFallbackCommit, entry.Action)
		require.NotNil(t, entry.UserID)
		assert.Equal(t, d.user.ID, *entry.UserID)
	})
	d.cache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	out, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.AtomicityFallback, out.Mode)
}

func TestLedgerService_Submit_FallbackFailureIsNotRetriedAgain(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFull)
	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.transactor.EXPECT().WithinTransaction(ctx, gomock.Any()).Return(ports.ErrAtomicUnitsUnsupported).Times(1)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, gomock.Any()).Return(nil, errors.New("timeout")).Times(1)

	_, err := d.svc.Submit(ctx, d.request(domain.TransactionKindTopup, "10"))
	assertAppError(t, err, apperror.CodeInternal)
}

func TestLedgerService_Submit_FallbackLostRaceCompensates(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFallback)
	ctx := context.Background()
	req := d.request(domain.TransactionKindSpend, "30")
	winner := &domain.Transaction{ID: uuid.New(), Kind: domain.TransactionKindSpend, Amount: dec("-30"), IdempotencyKey: req.IdempotencyKey, BalanceAfter: dec("70")}

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	gomock.InOrder(
		d.txRepo.EXPECT().GetByIdempotencyKey(ctx, req.IdempotencyKey).Return(nil, nil),
		d.txRepo.EXPECT().GetByIdempotencyKey(ctx, req.IdempotencyKey).Return(winner, nil),
	)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	gomock.InOrder(
		d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, decEq("-30"), false).Return(d.wallet("40"), nil),
		d.walletRepo.EXPECT().ApplyDelta(gomock.Any(), d.user.ID, d.asset.ID, decEq("30"), false).Return(d.wallet("70"), nil),
	)
	d.txRepo.EXPECT().Append(ctx, gomock.Any()).Return(ports.ErrDuplicateIdempotencyKey)
	d.cache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	out, err := d.svc.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, out.TransactionID)
	assert.True(t, out.Balance.Equal(dec("70")))
}

func TestLedgerService_Submit_FallbackAppendFailureCompensates(t *testing.T) {
	d := setupLedgerService(t, domain.AtomicityFallback)
	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, gomock.Any()).Return(nil, nil)
	d.resolver.EXPECT().Resolve(ctx, "alice", "Gold Coins").Return(d.user, d.asset, nil)
	gomock.InOrder(
		d.walletRepo.EXPECT().ApplyDelta(ctx, d.user.ID, d.asset.ID, decEq("10"), true).Return(d.wallet("10"), nil),
		d.walletRepo.EXPECT().ApplyDelta(gomock.Any(), d.user.ID, d.asset.ID, decEq("-10"), false).Return(nil, errors.New("still down")),
	)
	d.txRepo.EXPECT().Append(ctx, gomock.Any()).Return(errors.New("write concern timeout"))

	_, err := d.svc.Submit(ctx, d.request(domain.TransactionKindTopup, "10"))
	assertAppError(t, err, apperror.CodeInternal)
	assert.True(t, apperror.IsFailed(err))
}
