package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"internal-wallet-service/internal/adapter/storage/memory"
	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLedger wires the engine to an in-memory store.
type memoryLedger struct {
	svc     *LedgerServiceImpl
	store   *memory.Store
	wallets *memory.WalletRepo
	txs     *memory.TransactionRepo
	user    *domain.User
	asset   *domain.AssetType
}

func newMemoryLedger(t *testing.T, supportsTransactions bool, mode domain.AtomicityMode) *memoryLedger {
	return newMemoryLedgerWithLog(t, supportsTransactions, mode, nil)
}

// newMemoryLedgerWithLog lets a test swap the transaction log implementation.
func newMemoryLedgerWithLog(t *testing.T, supportsTransactions bool, mode domain.AtomicityMode, wrap func(*memory.TransactionRepo) ports.TransactionRepository) *memoryLedger {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(supportsTransactions)
	users := memory.NewUserRepo(store)
	assets := memory.NewAssetTypeRepo(store)

	m := &memoryLedger{
		store:   store,
		wallets: memory.NewWalletRepo(store),
		txs:     memory.NewTransactionRepo(store),
		user:    &domain.User{ID: uuid.New(), Username: "alice"},
		asset:   &domain.AssetType{ID: uuid.New(), Name: "Gold Coins"},
	}
	require.NoError(t, users.Create(ctx, m.user))
	require.NoError(t, assets.Create(ctx, m.asset))

	var txRepo ports.TransactionRepository = m.txs
	if wrap != nil {
		txRepo = wrap(m.txs)
	}
	idemp := NewIdempotencyLedger(txRepo, nil, 0, newTestLogger())
	audit := NewAuditService(memory.NewAuditRepo(store), newTestLogger())
	m.svc = NewLedgerService(
		NewEntityResolver(users, assets), m.wallets, txRepo, idemp,
		memory.NewTransactor(store), audit, mode, newTestLogger(),
	)
	return m
}

func (m *memoryLedger) submit(t *testing.T, kind domain.TransactionKind, amount, key string) (*domain.Outcome, error) {
	t.Helper()
	return m.svc.Submit(context.Background(), ports.SubmitRequest{
		Kind:           kind,
		UserIdentifier: "alice",
		AssetTypeName:  "Gold Coins",
		Amount:         dec(amount),
		IdempotencyKey: key,
	})
}

func (m *memoryLedger) balance(t *testing.T) string {
	t.Helper()
	w, err := m.wallets.GetByOwner(context.Background(), m.user.ID, m.asset.ID)
	require.NoError(t, err)
	if w == nil {
		return "none"
	}
	return w.Balance.String()
}

var atomicityCases = []struct {
	name                 string
	supportsTransactions bool
	mode                 domain.AtomicityMode
}{
	{"full", true, domain.AtomicityFull},
	{"fallback", true, domain.AtomicityFallback},
	{"full without store support", false, domain.AtomicityFull},
}

func TestLedger_IdempotentReplay(t *testing.T) {
	for _, tc := range atomicityCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMemoryLedger(t, tc.supportsTransactions, tc.mode)
			key := uuid.NewString()

			first, err := m.submit(t, domain.TransactionKindTopup, "100", key)
			require.NoError(t, err)
			second, err := m.submit(t, domain.TransactionKindTopup, "100", key)
			require.NoError(t, err)

			assert.Equal(t, first.TransactionID, second.TransactionID)
			assert.True(t, first.Balance.Equal(second.Balance))
			assert.Equal(t, "100", m.balance(t))
			assert.Equal(t, 1, m.store.TransactionCount())
		})
	}
}

func TestLedger_IdempotencyKeyIsCaseInsensitive(t *testing.T) {
	m := newMemoryLedger(t, true, domain.AtomicityFull)
	key := "550e8400-e29b-41d4-a716-446655440000"

	first, err := m.submit(t, domain.TransactionKindBonus, "7", key)
	require.NoError(t, err)
	second, err := m.submit(t, domain.TransactionKindBonus, "7", "550E8400-E29B-41D4-A716-446655440000")
	require.NoError(t, err)

	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, "7", m.balance(t))
}

func TestLedger_ConcurrentSpendsNeverOverdraw(t *testing.T) {
	for _, tc := range atomicityCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMemoryLedger(t, tc.supportsTransactions, tc.mode)
			_, err := m.submit(t, domain.TransactionKindTopup, "100", uuid.NewString())
			require.NoError(t, err)

			errs := make([]error, 2)
			var wg sync.WaitGroup
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = m.submit(t, domain.TransactionKindSpend, "80", uuid.NewString())
				}(i)
			}
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assertAppError(t, err, apperror.CodeInsufficientFunds)
			}
			assert.Equal(t, 1, succeeded)
			assert.Equal(t, "20", m.balance(t))
			assert.Equal(t, 2, m.store.TransactionCount())
		})
	}
}

func TestLedger_ConcurrentCreditsAreAdditive(t *testing.T) {
	for _, tc := range atomicityCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMemoryLedger(t, tc.supportsTransactions, tc.mode)

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := m.submit(t, domain.TransactionKindBonus, "10", uuid.NewString())
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			assert.Equal(t, "100", m.balance(t))
			assert.Equal(t, 10, m.store.TransactionCount())
		})
	}
}

func TestLedger_LazyWalletCreation(t *testing.T) {
	m := newMemoryLedger(t, true, domain.AtomicityFull)
	assert.Equal(t, "none", m.balance(t))

	_, err := m.submit(t, domain.TransactionKindSpend, "1", uuid.NewString())
	assertAppError(t, err, apperror.CodeInsufficientFunds)
	assert.Equal(t, "none", m.balance(t), "spend must not create a wallet")

	out, err := m.submit(t, domain.TransactionKindTopup, "12.5", uuid.NewString())
	require.NoError(t, err)
	assert.True(t, out.Balance.Equal(dec("12.5")))
	assert.Equal(t, "12.5", m.balance(t))
}

func TestLedger_RejectionHasNoSideEffects(t *testing.T) {
	for _, tc := range atomicityCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMemoryLedger(t, tc.supportsTransactions, tc.mode)
			_, err := m.submit(t, domain.TransactionKindTopup, "50", uuid.NewString())
			require.NoError(t, err)

			key := uuid.NewString()
			_, err = m.submit(t, domain.TransactionKindSpend, "50.01", key)
			assertAppError(t, err, apperror.CodeInsufficientFunds)

			assert.Equal(t, "50", m.balance(t))
			assert.Equal(t, 1, m.store.TransactionCount())

			// The rejected key stays usable.
			out, err := m.submit(t, domain.TransactionKindSpend, "50", key)
			require.NoError(t, err)
			assert.True(t, out.Balance.IsZero())
		})
	}
}

func TestLedger_UnknownEntitiesRejected(t *testing.T) {
	m := newMemoryLedger(t, true, domain.AtomicityFull)

	_, err := m.svc.Submit(context.Background(), ports.SubmitRequest{
		Kind: domain.TransactionKindTopup, UserIdentifier: "bob", AssetTypeName: "Gold Coins",
		Amount: dec("1"), IdempotencyKey: uuid.NewString(),
	})
	assertAppError(t, err, apperror.CodeNotFound)

	_, err = m.svc.Submit(context.Background(), ports.SubmitRequest{
		Kind: domain.TransactionKindTopup, UserIdentifier: "alice", AssetTypeName: "gold coins",
		Amount: dec("1"), IdempotencyKey: uuid.NewString(),
	})
	assertAppError(t, err, apperror.CodeNotFound)

	assert.Zero(t, m.store.TransactionCount())
}

func TestLedger_ResolvesUserByID(t *testing.T) {
	m := newMemoryLedger(t, true, domain.AtomicityFull)

	_, err := m.svc.Submit(context.Background(), ports.SubmitRequest{
		Kind: domain.TransactionKindTopup, UserIdentifier: m.user.ID.String(), AssetTypeName: "Gold Coins",
		Amount: dec("3"), IdempotencyKey: uuid.NewString(),
	})
	require.NoError(t, err)
	assert.Equal(t, "3", m.balance(t))
}

func TestLedger_FallbackCommitIsFlagged(t *testing.T) {
	m := newMemoryLedger(t, false, domain.AtomicityFull)

	out, err := m.submit(t, domain.TransactionKindTopup, "10", uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, domain.AtomicityFallback, out.Mode)

	require.Eventually(t, func() bool {
		for _, l := range m.store.AuditLogs() {
			if l.Action == domain.AuditActionFallbackCommit && l.ResourceID == out.TransactionID.String() {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestLedger_FullModeCommitIsNotFlagged(t *testing.T) {
	m := newMemoryLedger(t, true, domain.AtomicityFull)

	out, err := m.submit(t, domain.TransactionKindTopup, "10", uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, domain.AtomicityFull, out.Mode)
}

// racingLog lets a competing request commit the same key right before the
// wrapped Append runs, as a concurrent request on another node would.
type racingLog struct {
	*memory.TransactionRepo
	wallets *memory.WalletRepo
	userID  uuid.UUID
	assetID uuid.UUID
	once    sync.Once
}

func (r *racingLog) Append(ctx context.Context, tx *domain.Transaction) error {
	r.once.Do(func() {
		bg := context.Background()
		w, err := r.wallets.ApplyDelta(bg, r.userID, r.assetID, tx.Amount, false)
		if err != nil || w == nil {
			return
		}
		_ = r.TransactionRepo.Append(bg, &domain.Transaction{
			ID:             uuid.New(),
			WalletID:       w.ID,
			Amount:         tx.Amount,
			Kind:           tx.Kind,
			Description:    "competitor",
			IdempotencyKey: tx.IdempotencyKey,
			BalanceAfter:   w.Balance,
			Mode:           tx.Mode,
		})
	})
	return r.TransactionRepo.Append(ctx, tx)
}

func TestLedger_LostRaceChangesBalanceOnce(t *testing.T) {
	for _, tc := range atomicityCases {
		t.Run(tc.name, func(t *testing.T) {
			var racer *racingLog
			m := newMemoryLedgerWithLog(t, tc.supportsTransactions, tc.mode, func(txs *memory.TransactionRepo) ports.TransactionRepository {
				racer = &racingLog{TransactionRepo: txs}
				return racer
			})
			racer.wallets, racer.userID, racer.assetID = m.wallets, m.user.ID, m.asset.ID

			// Seed the wallet through the store so the race hook fires on the
			// submission under test.
			_, err := m.wallets.ApplyDelta(context.Background(), m.user.ID, m.asset.ID, dec("100"), true)
			require.NoError(t, err)

			key := uuid.NewString()
			out, err := m.submit(t, domain.TransactionKindTopup, "10", key)
			require.NoError(t, err)

			winner, err := m.txs.GetByIdempotencyKey(context.Background(), key)
			require.NoError(t, err)
			require.NotNil(t, winner)
			assert.Equal(t, "competitor", winner.Description)
			assert.Equal(t, winner.ID, out.TransactionID)
			assert.True(t, out.Balance.Equal(winner.BalanceAfter))

			assert.Equal(t, "110", m.balance(t))
			assert.Equal(t, 1, m.store.TransactionCount())
		})
	}
}
