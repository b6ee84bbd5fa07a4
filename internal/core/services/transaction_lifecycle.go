package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	portsledger "github.com/SscSPs/catalog_sync_app/internal/core/ports/ledger"
	portsrepo "github.com/SscSPs/catalog_sync_app/internal/core/ports/repositories"
	"github.com/SscSPs/catalog_sync_app/internal/metrics"
)

// SubmitFunc sends one state-changing request and returns its handle.
type SubmitFunc func(ctx context.Context) (domain.TransactionHandle, error)

// TransactionLifecycle drives a mutation from submission to confirmation and
// enforces at most one open mutation per account.
type TransactionLifecycle struct {
	BaseService
	confirmer   portsledger.CatalogCommander
	pendingRepo portsrepo.PendingTransactionRepository
	deployment  string
	timeout     time.Duration
	now         func() time.Time

	mu    sync.Mutex
	slots map[domain.Account]*domain.PendingTransaction
	epoch uint64 // bumped on every invalidation
}

// LifecycleOption is a functional option for configuring the lifecycle
type LifecycleOption func(*TransactionLifecycle)

// WithConfirmationTimeout bounds the confirmation wait. Zero waits indefinitely.
func WithConfirmationTimeout(timeout time.Duration) LifecycleOption {
	return func(l *TransactionLifecycle) {
		l.timeout = timeout
	}
}

// WithPendingRepository persists open mutations so a later session can clear them.
func WithPendingRepository(repo portsrepo.PendingTransactionRepository, deployment string) LifecycleOption {
	return func(l *TransactionLifecycle) {
		l.pendingRepo = repo
		l.deployment = deployment
	}
}

// WithLifecycleClock overrides time.Now, for tests.
func WithLifecycleClock(now func() time.Time) LifecycleOption {
	return func(l *TransactionLifecycle) {
		l.now = now
	}
}

// WithLifecycleObservability sets the fallback logger and the metrics sink.
func WithLifecycleObservability(logger *slog.Logger, m metrics.Metrics) LifecycleOption {
	return func(l *TransactionLifecycle) {
		l.Logger = logger
		l.Metrics = m
	}
}

// NewTransactionLifecycle creates a lifecycle that confirms through the given commander.
func NewTransactionLifecycle(confirmer portsledger.CatalogCommander, options ...LifecycleOption) *TransactionLifecycle {
	l := &TransactionLifecycle{
		confirmer: confirmer,
		now:       time.Now,
		slots:     make(map[domain.Account]*domain.PendingTransaction),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Pending returns a copy of the account's open mutation, if any.
func (l *TransactionLifecycle) Pending(account domain.Account) (*domain.PendingTransaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.slots[account.Normalize()]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// State returns the lifecycle state of the account's slot.
func (l *TransactionLifecycle) State(account domain.Account) domain.TxState {
	if p, ok := l.Pending(account); ok {
		return p.State
	}
	return domain.TxIdle
}

// Invalidate drops every open slot. Mutations still running will finish with
// ErrStaleAccount; their remote transactions are not cancelled.
func (l *TransactionLifecycle) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.epoch++
	l.slots = make(map[domain.Account]*domain.PendingTransaction)
}

// Run submits the mutation and blocks until it reaches a terminal state.
// The account's slot is always cleared before Run returns.
func (l *TransactionLifecycle) Run(ctx context.Context, account domain.Account, op domain.Operation, payload any, submit SubmitFunc) (*domain.TxOutcome, error) {
	m := l.metricsOrNop()

	pending, epoch, err := l.open(account, op, payload)
	if err != nil {
		m.IncLocalRejections("already_pending")
		return nil, err
	}
	defer l.close(ctx, pending)

	logger := l.GetLogger(ctx).With(
		slog.String("pending_id", pending.ID),
		slog.String("operation", string(op)),
		slog.String("account", account.String()),
	)

	l.persist(ctx, logger, *pending)

	handle, err := submit(ctx)
	if err != nil {
		l.setState(pending.ID, account, domain.TxFailed, "")
		m.IncTransactions(string(op), submitOutcome(err))
		logger.Warn("Transaction submission failed", slog.String("error", err.Error()))
		return nil, err
	}
	l.setState(pending.ID, account, domain.TxPending, handle.ID)
	logger = logger.With(slog.String("tx_id", handle.ID))
	logger.Info("Transaction submitted, awaiting confirmation")

	submitted := *pending
	submitted.State = domain.TxPending
	submitted.LedgerTxID = handle.ID
	l.persist(ctx, logger, submitted)

	if !handle.Account.IsZero() && !handle.Account.Equal(account) {
		m.IncTransactions(string(op), metrics.OutcomeAbandoned)
		return nil, fmt.Errorf("%w: transaction %s was signed by %s", apperrors.ErrStaleAccount, handle.ID, handle.Account)
	}
	if l.isStale(epoch) {
		m.IncTransactions(string(op), metrics.OutcomeAbandoned)
		return nil, fmt.Errorf("%w: transaction %s was sent before the account changed", apperrors.ErrStaleAccount, handle.ID)
	}

	waitCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	started := l.now()
	confirmation, err := l.confirmer.AwaitConfirmation(waitCtx, handle)
	if err != nil {
		l.setState(pending.ID, account, domain.TxFailed, handle.ID)
		switch {
		case ctx.Err() != nil:
			m.IncTransactions(string(op), metrics.OutcomeAbandoned)
			logger.Warn("Confirmation wait abandoned by caller", slog.String("error", ctx.Err().Error()))
			return nil, fmt.Errorf("confirmation wait for %s abandoned: %w", handle.ID, ctx.Err())
		case errors.Is(err, context.DeadlineExceeded):
			m.IncTransactions(string(op), metrics.OutcomeTimeout)
			logger.Warn("Confirmation wait timed out", slog.Duration("timeout", l.timeout))
			return nil, fmt.Errorf("%w: transaction %s after %s", apperrors.ErrTimeout, handle.ID, l.timeout)
		default:
			m.IncTransactions(string(op), submitOutcome(err))
			logger.Error("Confirmation failed", slog.String("error", err.Error()))
			return nil, err
		}
	}
	m.ObserveConfirmationLatency(string(op), l.now().Sub(started))

	if !confirmation.Confirmed {
		l.setState(pending.ID, account, domain.TxFailed, handle.ID)
		m.IncTransactions(string(op), metrics.OutcomeFailed)
		logger.Warn("Transaction failed on ledger", slog.String("reason", confirmation.Reason))
		return nil, apperrors.NewLedgerRejection(confirmation.Reason)
	}

	l.setState(pending.ID, account, domain.TxConfirmed, handle.ID)
	if l.isStale(epoch) {
		m.IncTransactions(string(op), metrics.OutcomeAbandoned)
		return nil, fmt.Errorf("%w: transaction %s confirmed for a previous account", apperrors.ErrStaleAccount, handle.ID)
	}

	m.IncTransactions(string(op), metrics.OutcomeConfirmed)
	logger.Info("Transaction confirmed", slog.Uint64("block_number", confirmation.BlockNumber))
	return &domain.TxOutcome{
		Handle:       handle,
		State:        domain.TxConfirmed,
		Confirmation: confirmation,
	}, nil
}

// open moves the account's slot from Idle to Submitting.
func (l *TransactionLifecycle) open(account domain.Account, op domain.Operation, payload any) (*domain.PendingTransaction, uint64, error) {
	key := account.Normalize()

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.slots[key]; ok {
		return nil, 0, fmt.Errorf("%w: %s %s submitted at %s", apperrors.ErrAlreadyPending,
			existing.Operation, existing.ID, existing.SubmittedAt.Format(time.RFC3339))
	}

	pending := &domain.PendingTransaction{
		ID:          uuid.NewString(),
		Account:     key,
		Operation:   op,
		Payload:     payload,
		State:       domain.TxSubmitting,
		SubmittedAt: l.now().UTC(),
	}
	l.slots[key] = pending
	return pending, l.epoch, nil
}

// persist upserts the marker for pending. The marker only helps the next
// session, so a failure is logged and the mutation proceeds.
func (l *TransactionLifecycle) persist(ctx context.Context, logger *slog.Logger, pending domain.PendingTransaction) {
	if l.pendingRepo == nil {
		return
	}
	if err := l.pendingRepo.SavePending(ctx, l.deployment, pending); err != nil {
		logger.Warn("Failed to persist pending transaction marker",
			slog.String("state", string(pending.State)),
			slog.String("error", err.Error()))
	}
}

// close clears the slot if it still belongs to this mutation.
func (l *TransactionLifecycle) close(ctx context.Context, pending *domain.PendingTransaction) {
	l.mu.Lock()
	if current, ok := l.slots[pending.Account]; ok && current.ID == pending.ID {
		delete(l.slots, pending.Account)
	}
	l.mu.Unlock()

	if l.pendingRepo != nil {
		// The caller may have abandoned ctx; the marker must still go.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := l.pendingRepo.DeletePending(cleanupCtx, pending.ID); err != nil {
			l.LogError(ctx, err, "Failed to delete pending transaction marker", slog.String("pending_id", pending.ID))
		}
	}
}

func (l *TransactionLifecycle) setState(pendingID string, account domain.Account, state domain.TxState, ledgerTxID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.slots[account.Normalize()]; ok && current.ID == pendingID {
		current.State = state
		if ledgerTxID != "" {
			current.LedgerTxID = ledgerTxID
		}
	}
}

func (l *TransactionLifecycle) isStale(epoch uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epoch != epoch
}

func submitOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrRejectedByLedger):
		return metrics.OutcomeRejected
	case errors.Is(err, apperrors.ErrUnreachableLedger):
		return metrics.OutcomeUnreachable
	default:
		return metrics.OutcomeFailed
	}
}
