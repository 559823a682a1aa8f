package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"
	"internal-wallet-service/internal/metrics"
	"internal-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// errLostRace aborts a full-mode unit whose log append lost the idempotency
// key to a concurrent request. The unit rolls back and the winner's entry is
// returned as a replay.
var errLostRace = errors.New("lost idempotency key race")

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	resolver   ports.EntityResolver
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	idemp      *IdempotencyLedger
	transactor ports.Transactor
	audit      ports.AuditService
	mode       domain.AtomicityMode
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. audit may be nil.
func NewLedgerService(
	resolver ports.EntityResolver,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	idemp *IdempotencyLedger,
	transactor ports.Transactor,
	audit ports.AuditService,
	mode domain.AtomicityMode,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		resolver:   resolver,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		idemp:      idemp,
		transactor: transactor,
		audit:      audit,
		mode:       mode,
		log:        log,
	}
}

// submission is a validated request.
type submission struct {
	kind        domain.TransactionKind
	key         string
	user        string
	asset       string
	amount      decimal.Decimal
	description string

	userID uuid.UUID // set once resolved
}

// Submit applies one TOPUP, BONUS or SPEND. A request whose idempotency key
// is already committed returns the recorded outcome without side effects.
func (s *LedgerServiceImpl) Submit(ctx context.Context, req ports.SubmitRequest) (*domain.Outcome, error) {
	sub, err := validate(req)
	if err != nil {
		metrics.RecordTransaction("invalid", metrics.OutcomeRejected)
		return nil, err
	}

	out, replayed, err := s.submit(ctx, sub)
	switch {
	case err == nil && replayed:
		metrics.RecordTransaction(string(sub.kind), metrics.OutcomeReplayed)
	case err == nil:
		metrics.RecordTransaction(string(sub.kind), metrics.OutcomeApplied)
	case apperror.IsRejected(err):
		metrics.RecordTransaction(string(sub.kind), metrics.OutcomeRejected)
	default:
		metrics.RecordTransaction(string(sub.kind), metrics.OutcomeFailed)
		s.log.Error().Err(err).
			Str("idempotency_key", sub.key).
			Str("kind", string(sub.kind)).
			Msg("transaction failed")
	}
	return out, err
}

// validate runs before any store or cache access.
func validate(req ports.SubmitRequest) (*submission, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, apperror.ErrInvalidAmount()
	}
	kind, err := domain.ParseTransactionKind(string(req.Kind))
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	key, err := domain.NormalizeIdempotencyKey(req.IdempotencyKey)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if req.UserIdentifier == "" {
		return nil, apperror.Validation("user identifier is required")
	}
	if req.AssetTypeName == "" {
		return nil, apperror.Validation("asset type is required")
	}

	description := req.Description
	if description == "" {
		description = string(kind)
	}
	return &submission{
		kind:        kind,
		key:         key,
		user:        req.UserIdentifier,
		asset:       req.AssetTypeName,
		amount:      req.Amount,
		description: description,
	}, nil
}

func (s *LedgerServiceImpl) submit(ctx context.Context, sub *submission) (*domain.Outcome, bool, error) {
	if cached := s.idemp.Cached(ctx, sub.key); cached != nil {
		metrics.RecordCacheHit()
		s.checkReplay(sub, cached)
		return cached.Outcome(), true, nil
	}

	if s.mode == domain.AtomicityFull {
		var (
			tx       *domain.Transaction
			replayed bool
		)
		err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			tx, replayed, err = s.execute(ctx, sub, domain.AtomicityFull)
			return err
		})
		switch {
		case err == nil:
			return s.finish(ctx, sub, tx, replayed)
		case errors.Is(err, errLostRace):
			existing, err := s.winner(ctx, sub.key)
			if err != nil {
				return nil, false, err
			}
			return s.finish(ctx, sub, existing, true)
		case !errors.Is(err, ports.ErrAtomicUnitsUnsupported):
			return nil, false, asAppError(err)
		}

		s.log.Warn().Err(err).
			Str("idempotency_key", sub.key).
			Msg("store cannot run atomic units, retrying once in fallback mode")
	}

	tx, replayed, err := s.execute(ctx, sub, domain.AtomicityFallback)
	if err != nil {
		return nil, false, asAppError(err)
	}
	return s.finish(ctx, sub, tx, replayed)
}

// execute runs the idempotency check, resolution, balance mutation and log
// append. In full mode it runs inside a unit and any error rolls everything
// back; in fallback mode a persisted mutation is compensated on append failure.
func (s *LedgerServiceImpl) execute(ctx context.Context, sub *submission, mode domain.AtomicityMode) (*domain.Transaction, bool, error) {
	existing, err := s.idemp.FindByKey(ctx, sub.key)
	if err != nil {
		return nil, false, apperror.ErrDatabaseError(err)
	}
	if existing != nil {
		return existing, true, nil
	}

	user, asset, err := s.resolver.Resolve(ctx, sub.user, sub.asset)
	if err != nil {
		return nil, false, err
	}
	sub.userID = user.ID

	delta := sub.kind.SignedDelta(sub.amount)
	wallet, err := s.walletRepo.ApplyDelta(ctx, user.ID, asset.ID, delta, sub.kind.IsCredit())
	if err != nil {
		return nil, false, storeError("apply delta", err)
	}
	if wallet == nil {
		return nil, false, s.rejection(ctx, user.ID, asset.ID)
	}

	tx := &domain.Transaction{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		Amount:         delta,
		Kind:           sub.kind,
		Description:    sub.description,
		IdempotencyKey: sub.key,
		BalanceAfter:   wallet.Balance,
		Mode:           mode,
		CreatedAt:      time.Now().UTC(),
	}

	err = s.txRepo.Append(ctx, tx)
	if err == nil {
		return tx, false, nil
	}
	duplicate := errors.Is(err, ports.ErrDuplicateIdempotencyKey)

	if mode == domain.AtomicityFull {
		if duplicate {
			return nil, false, errLostRace
		}
		return nil, false, storeError("append transaction", err)
	}

	s.compensate(ctx, sub, asset.ID, delta)
	if duplicate {
		existing, err := s.winner(ctx, sub.key)
		if err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}
	return nil, false, storeError("append transaction", err)
}

// storeError converts a repository error. A store that cannot represent an
// amount rejects the request; anything else is a retryable failure.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrAmountPrecision) {
		return apperror.ErrInvalidAmount()
	}
	return apperror.ErrDatabaseError(fmt.Errorf("%s: %w", op, err))
}

// rejection picks the message for a mutation that matched nothing.
func (s *LedgerServiceImpl) rejection(ctx context.Context, userID, assetTypeID uuid.UUID) error {
	wallet, err := s.walletRepo.GetByOwner(ctx, userID, assetTypeID)
	if err == nil && wallet == nil {
		return apperror.ErrWalletNotFound()
	}
	return apperror.ErrInsufficientFunds()
}

// compensate reverts a fallback-mode mutation whose log append failed.
func (s *LedgerServiceImpl) compensate(ctx context.Context, sub *submission, assetTypeID uuid.UUID, delta decimal.Decimal) {
	wallet, err := s.walletRepo.ApplyDelta(context.WithoutCancel(ctx), sub.userID, assetTypeID, delta.Neg(), false)
	if err == nil && wallet != nil {
		s.log.Warn().
			Str("idempotency_key", sub.key).
			Str("delta", delta.String()).
			Msg("compensated balance mutation after failed log append")
		return
	}

	metrics.RecordUnreconciled()
	s.log.Error().Err(err).
		Str("idempotency_key", sub.key).
		Str("user_id", sub.userID.String()).
		Str("asset_type_id", assetTypeID.String()).
		Str("delta", delta.String()).
		Msg("balance mutation could not be compensated, wallet needs reconciliation")
}

// winner re-reads the entry that took the idempotency key.
func (s *LedgerServiceImpl) winner(ctx context.Context, key string) (*domain.Transaction, error) {
	existing, err := s.idemp.FindByKey(ctx, key)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if existing == nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency key %s conflicted but no entry was found", key))
	}
	return existing, nil
}

func (s *LedgerServiceImpl) finish(ctx context.Context, sub *submission, tx *domain.Transaction, replayed bool) (*domain.Outcome, bool, error) {
	if replayed {
		s.checkReplay(sub, tx)
		s.idemp.Remember(ctx, tx)
		return tx.Outcome(), true, nil
	}

	if tx.Mode == domain.AtomicityFallback {
		s.recordFallback(ctx, sub, tx)
	}
	s.idemp.Remember(ctx, tx)

	s.log.Info().
		Str("tx_id", tx.ID.String()).
		Str("idempotency_key", tx.IdempotencyKey).
		Str("kind", string(tx.Kind)).
		Str("amount", tx.Amount.String()).
		Str("mode", string(tx.Mode)).
		Msg("transaction committed")

	return tx.Outcome(), false, nil
}

// checkReplay warns when a replayed key carries a different kind or amount
// than the recorded entry. The recorded outcome is returned either way.
func (s *LedgerServiceImpl) checkReplay(sub *submission, tx *domain.Transaction) {
	if tx.Kind == sub.kind && tx.Amount.Abs().Equal(sub.amount) {
		return
	}
	s.log.Warn().
		Str("idempotency_key", sub.key).
		Str("tx_id", tx.ID.String()).
		Str("recorded_kind", string(tx.Kind)).
		Str("recorded_amount", tx.Amount.String()).
		Msg("idempotency key reused with a different payload, returning recorded outcome")
}

func (s *LedgerServiceImpl) recordFallback(ctx context.Context, sub *submission, tx *domain.Transaction) {
	s.log.Warn().
		Str("tx_id", tx.ID.String()).
		Str("idempotency_key", tx.IdempotencyKey).
		Str("kind", string(tx.Kind)).
		Str("mode", string(tx.Mode)).
		Msg("transaction committed without atomic unit")
	metrics.RecordFallbackCommit(string(tx.Kind))

	if s.audit == nil {
		return
	}
	details, _ := json.Marshal(map[string]string{
		"kind":            string(tx.Kind),
		"amount":          tx.Amount.String(),
		"idempotency_key": tx.IdempotencyKey,
		"wallet_id":       tx.WalletID.String(),
	})
	userID := sub.userID
	s.audit.Log(ctx, &domain.AuditLog{
		UserID:       &userID,
		Action:       domain.AuditActionFallbackCommit,
		ResourceType: "transaction",
		ResourceID:   tx.ID.String(),
		Details:      string(details),
	})
}

// asAppError keeps AppErrors as they are and wraps anything else as a failure.
func asAppError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.InternalError(err)
}

var _ ports.LedgerService = (*LedgerServiceImpl)(nil)
