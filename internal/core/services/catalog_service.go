package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	portsledger "github.com/SscSPs/catalog_sync_app/internal/core/ports/ledger"
	portsrepo "github.com/SscSPs/catalog_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/catalog_sync_app/internal/core/ports/services"
	"github.com/SscSPs/catalog_sync_app/internal/dto"
	"github.com/SscSPs/catalog_sync_app/internal/metrics"
	"github.com/SscSPs/catalog_sync_app/pkg/amount"
)

// purchasePayload is recorded on the pending slot of a purchase.
type purchasePayload struct {
	ItemID          uint64   `json:"itemID"`
	PriceMinorUnits *big.Int `json:"priceMinorUnits"`
}

// catalogService owns the local mirror, the enrollment index and the pending
// slots, and is the only component that mutates them.
type catalogService struct {
	BaseService
	gateway        portsledger.CatalogGateway
	signer         portsledger.Signer
	lifecycle      *TransactionLifecycle
	catalogRepo    portsrepo.CatalogRepositoryFacade
	deployment     string
	refreshTimeout time.Duration
	validate       *validator.Validate
	now            func() time.Time

	mu           sync.RWMutex
	mirror       *domain.CatalogSnapshot
	index        *EnrollmentIndex
	publishedSeq uint64

	persistMu sync.Mutex

	refreshSeq     atomic.Uint64
	needsReconcile atomic.Bool
}

// CatalogServiceOption is a functional option for configuring the catalog service
type CatalogServiceOption func(*catalogService)

// WithCatalogRepository persists published mirrors and pending markers for the deployment.
func WithCatalogRepository(repo portsrepo.CatalogRepositoryFacade, deployment string) CatalogServiceOption {
	return func(s *catalogService) {
		s.catalogRepo = repo
		s.deployment = deployment
	}
}

// WithTransactionLifecycle replaces the default lifecycle.
func WithTransactionLifecycle(lifecycle *TransactionLifecycle) CatalogServiceOption {
	return func(s *catalogService) {
		s.lifecycle = lifecycle
	}
}

// WithRefreshTimeout bounds each refresh. Zero means no bound beyond the caller's context.
func WithRefreshTimeout(timeout time.Duration) CatalogServiceOption {
	return func(s *catalogService) {
		s.refreshTimeout = timeout
	}
}

// WithObservability sets the fallback logger and the metrics sink.
func WithObservability(logger *slog.Logger, m metrics.Metrics) CatalogServiceOption {
	return func(s *catalogService) {
		s.Logger = logger
		s.Metrics = m
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) CatalogServiceOption {
	return func(s *catalogService) {
		s.now = now
	}
}

// NewCatalogService creates the catalog view model for the signer's account.
func NewCatalogService(gateway portsledger.CatalogGateway, signer portsledger.Signer, options ...CatalogServiceOption) portssvc.CatalogSvcFacade {
	svc := &catalogService{
		gateway:  gateway,
		signer:   signer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}

	for _, option := range options {
		option(svc)
	}

	if svc.lifecycle == nil {
		lifecycleOpts := []LifecycleOption{
			WithLifecycleObservability(svc.Logger, svc.Metrics),
			WithLifecycleClock(svc.now),
		}
		if svc.catalogRepo != nil {
			lifecycleOpts = append(lifecycleOpts, WithPendingRepository(svc.catalogRepo, svc.deployment))
		}
		svc.lifecycle = NewTransactionLifecycle(gateway, lifecycleOpts...)
	}
	account := signer.ActiveAccount()
	svc.index = NewEnrollmentIndex(account)
	svc.mirror = domain.NewCatalogSnapshot(nil, nil, 0, account, time.Time{})

	return svc
}

// Ensure catalogService implements the CatalogSvcFacade interface
var _ portssvc.CatalogSvcFacade = (*catalogService)(nil)

// Start implements portssvc.CatalogSessionSvc
func (s *catalogService) Start(ctx context.Context) error {
	startedAt := s.now().UTC()

	if s.catalogRepo != nil {
		stale, err := s.catalogRepo.ClearPendingBefore(ctx, s.deployment, startedAt)
		if err != nil {
			s.LogError(ctx, err, "Failed to clear pending markers from previous sessions")
		}
		for _, p := range stale {
			s.LogWarn(ctx, "Cleared pending transaction left by a previous session",
				slog.String("pending_id", p.ID),
				slog.String("ledger_tx_id", p.LedgerTxID),
				slog.String("operation", string(p.Operation)),
				slog.String("account", p.Account.String()))
		}
		s.loadPersistedSnapshot(ctx)
	}

	if changes := s.signer.AccountChanges(); changes != nil {
		go s.watchAccounts(ctx, changes)
	}

	if _, err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("initial catalog refresh failed: %w", err)
	}
	return nil
}

// loadPersistedSnapshot publishes the last stored mirror so readers have
// something before the first refresh lands. Enrollments are only kept when
// they belong to the active account.
func (s *catalogService) loadPersistedSnapshot(ctx context.Context) {
	snap, err := s.catalogRepo.LoadSnapshot(ctx, s.deployment)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load persisted catalog snapshot")
		}
		return
	}

	account := s.signer.ActiveAccount()
	enrollments := snap.Enrollments
	if !snap.SyncedFor.Equal(account) {
		enrollments = nil
	}
	owned := make([]uint64, len(enrollments))
	for i, rec := range enrollments {
		owned[i] = rec.ItemID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishedSeq > 0 {
		return
	}
	idx := NewEnrollmentIndex(account)
	idx.Rebuild(owned)
	s.index = idx
	s.mirror = domain.NewCatalogSnapshot(snap.Items, idx.Records(), 0, account, snap.SyncedAt)
	s.LogInfo(ctx, "Loaded persisted catalog snapshot", slog.Int("items", len(snap.Items)))
}

func (s *catalogService) watchAccounts(ctx context.Context, changes <-chan domain.Account) {
	for {
		select {
		case <-ctx.Done():
			return
		case account, ok := <-changes:
			if !ok {
				return
			}
			if err := s.HandleAccountChange(ctx, account); err != nil {
				s.LogError(ctx, err, "Refresh after account change failed", slog.String("account", account.String()))
			}
		}
	}
}

// HandleAccountChange implements portssvc.CatalogSessionSvc
func (s *catalogService) HandleAccountChange(ctx context.Context, account domain.Account) error {
	s.LogInfo(ctx, "Active account changed", slog.String("account", account.String()))

	s.lifecycle.Invalidate()

	s.mu.Lock()
	s.index = NewEnrollmentIndex(account)
	s.mirror = domain.NewCatalogSnapshot(s.mirror.Items, nil, s.mirror.Sequence, account, s.mirror.SyncedAt)
	// Refreshes started for the previous account must not publish.
	s.publishedSeq = s.refreshSeq.Load()
	s.mu.Unlock()

	s.needsReconcile.Store(true)
	_, err := s.Refresh(ctx)
	return err
}

// Refresh implements portssvc.CatalogReaderSvc
func (s *catalogService) Refresh(ctx context.Context) (*domain.CatalogSnapshot, error) {
	m := s.metricsOrNop()
	seq := s.refreshSeq.Add(1)
	account := s.signer.ActiveAccount()
	started := s.now()

	if s.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.refreshTimeout)
		defer cancel()
	}

	var items []domain.CatalogItem
	var owned []uint64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.gateway.ListItems(gctx)
		return err
	})
	g.Go(func() error {
		if account.IsZero() {
			return nil
		}
		var err error
		owned, err = s.gateway.ListOwnedByAccount(gctx, account)
		return err
	})
	if err := g.Wait(); err != nil {
		m.IncRefreshes(metrics.ResultError)
		s.LogError(ctx, err, "Catalog refresh failed, keeping last published mirror", slog.Uint64("sequence", seq))
		return nil, fmt.Errorf("failed to refresh catalog: %w", err)
	}

	items = s.normalizeItems(ctx, items)
	idx := NewEnrollmentIndex(account)
	idx.Rebuild(owned)
	snap := domain.NewCatalogSnapshot(items, idx.Records(), seq, account, s.now().UTC())

	if !s.publish(snap, idx) {
		m.IncRefreshes(metrics.ResultStale)
		s.LogDebug(ctx, "Discarded refresh superseded by a newer one", slog.Uint64("sequence", seq))
		return s.Snapshot(), nil
	}
	s.needsReconcile.Store(false)

	m.IncRefreshes(metrics.ResultSuccess)
	m.ObserveRefreshLatency(s.now().Sub(started))
	m.SetCatalogSize(len(snap.Items))
	m.SetEnrolledItems(idx.Len())
	s.LogDebug(ctx, "Catalog mirror published",
		slog.Uint64("sequence", seq),
		slog.Int("items", len(snap.Items)),
		slog.Int("enrolled", idx.Len()))

	s.persistSnapshot(ctx, snap)
	return snap, nil
}

// persistSnapshot stores snap unless a newer mirror has been published since.
// Writes are serialized so an older snapshot never lands after a newer one.
func (s *catalogService) persistSnapshot(ctx context.Context, snap *domain.CatalogSnapshot) {
	if s.catalogRepo == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	current := s.publishedSeq
	s.mu.RUnlock()
	if snap.Sequence != current {
		s.LogDebug(ctx, "Skipped persisting superseded catalog snapshot",
			slog.Uint64("sequence", snap.Sequence), slog.Uint64("published", current))
		return
	}
	if err := s.catalogRepo.ReplaceSnapshot(ctx, s.deployment, snap); err != nil {
		s.LogError(ctx, err, "Failed to persist catalog snapshot", slog.Uint64("sequence", snap.Sequence))
	}
}

// publish swaps mirror and index together. It refuses snapshots older than
// the published one or built for an account that is no longer active.
func (s *catalogService) publish(snap *domain.CatalogSnapshot, idx *EnrollmentIndex) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Sequence <= s.publishedSeq {
		return false
	}
	if !snap.SyncedFor.Equal(s.signer.ActiveAccount()) {
		return false
	}
	s.mirror = snap
	s.index = idx
	s.publishedSeq = snap.Sequence
	return true
}

// normalizeItems pins ids to list positions and drops repeated participants.
func (s *catalogService) normalizeItems(ctx context.Context, items []domain.CatalogItem) []domain.CatalogItem {
	for i := range items {
		if items[i].ID != uint64(i) {
			s.LogWarn(ctx, "Ledger item id does not match its position, using position",
				slog.Uint64("reported_id", items[i].ID), slog.Int("position", i))
			items[i].ID = uint64(i)
		}
		seen := make(map[domain.Account]struct{}, len(items[i].Participants))
		participants := make([]domain.Account, 0, len(items[i].Participants))
		for _, p := range items[i].Participants {
			key := p.Normalize()
			if _, dup := seen[key]; dup {
				s.LogWarn(ctx, "Duplicate participant reported by ledger", slog.Uint64("item_id", uint64(i)), slog.String("account", p.String()))
				continue
			}
			seen[key] = struct{}{}
			participants = append(participants, p)
		}
		items[i].Participants = participants
	}
	return items
}

// Snapshot implements portssvc.CatalogReaderSvc
func (s *catalogService) Snapshot() *domain.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirror
}

// IsEnrolled implements portssvc.CatalogReaderSvc
func (s *catalogService) IsEnrolled(itemID uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.IsEnrolled(itemID)
}

// ItemsByCreator implements portssvc.CatalogReaderSvc
func (s *catalogService) ItemsByCreator(creator domain.Account) []domain.CatalogItem {
	snap := s.Snapshot()
	items := make([]domain.CatalogItem, 0)
	for _, item := range snap.Items {
		if item.Creator.Equal(creator) {
			items = append(items, item.Clone())
		}
	}
	return items
}

// ActiveAccount implements portssvc.CatalogReaderSvc
func (s *catalogService) ActiveAccount() domain.Account {
	return s.signer.ActiveAccount()
}

// PendingTransaction implements portssvc.CatalogWriterSvc
func (s *catalogService) PendingTransaction() (*domain.PendingTransaction, bool) {
	return s.lifecycle.Pending(s.signer.ActiveAccount())
}

// Create implements portssvc.CatalogWriterSvc
func (s *catalogService) Create(ctx context.Context, req dto.CreateItemRequest) (*domain.TxOutcome, error) {
	m := s.metricsOrNop()

	if err := s.validate.Struct(req); err != nil {
		m.IncLocalRejections("validation")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	price, err := amount.ToMinorUnits(req.Price)
	if err != nil {
		m.IncLocalRejections("invalid_amount")
		return nil, err
	}
	account, err := s.requireAccount()
	if err != nil {
		return nil, err
	}
	if err := s.reconcileIfNeeded(ctx); err != nil {
		return nil, err
	}

	payload := domain.CreateItemPayload{
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		PriceMinorUnits: price,
	}
	s.LogInfo(ctx, "Submitting catalog item creation",
		slog.String("title", req.Title),
		slog.String("price", amount.ToDecimalString(price)))

	out, err := s.lifecycle.Run(ctx, account, domain.OperationCreate, payload, func(ctx context.Context) (domain.TransactionHandle, error) {
		return s.gateway.SubmitCreate(ctx, account, payload)
	})
	return s.settle(ctx, out, err)
}

// Purchase implements portssvc.CatalogWriterSvc
func (s *catalogService) Purchase(ctx context.Context, itemID uint64, decimalPrice string) (*domain.TxOutcome, error) {
	m := s.metricsOrNop()

	account, err := s.requireAccount()
	if err != nil {
		return nil, err
	}
	if err := s.reconcileIfNeeded(ctx); err != nil {
		return nil, err
	}
	if s.IsEnrolled(itemID) {
		m.IncLocalRejections("already_enrolled")
		return nil, fmt.Errorf("%w: item %d", apperrors.ErrAlreadyEnrolled, itemID)
	}

	listed, known := s.Snapshot().Item(itemID)
	var price *big.Int
	if decimalPrice == "" {
		if !known {
			return nil, fmt.Errorf("%w: item %d is not in the local catalog", apperrors.ErrNotFound, itemID)
		}
		price = new(big.Int).Set(listed.PriceMinorUnits)
	} else {
		price, err = amount.ToMinorUnits(decimalPrice)
		if err != nil {
			m.IncLocalRejections("invalid_amount")
			return nil, err
		}
	}
	if known && listed.PriceMinorUnits != nil && listed.PriceMinorUnits.Cmp(price) != 0 {
		s.LogWarn(ctx, "Purchase value differs from listed price; the ledger will decide",
			slog.Uint64("item_id", itemID),
			slog.String("listed", listed.PriceDecimal()),
			slog.String("offered", amount.ToDecimalString(price)))
	}

	s.LogInfo(ctx, "Submitting purchase",
		slog.Uint64("item_id", itemID),
		slog.String("price", amount.ToDecimalString(price)))

	payload := purchasePayload{ItemID: itemID, PriceMinorUnits: price}
	out, err := s.lifecycle.Run(ctx, account, domain.OperationPurchase, payload, func(ctx context.Context) (domain.TransactionHandle, error) {
		return s.gateway.SubmitPurchase(ctx, account, itemID, price)
	})
	return s.settle(ctx, out, err)
}

// settle refreshes after a confirmed mutation. Success is only reported once
// the mirror reflects the ledger's post-mutation state.
func (s *catalogService) settle(ctx context.Context, out *domain.TxOutcome, err error) (*domain.TxOutcome, error) {
	if err != nil {
		if errors.Is(err, apperrors.ErrTimeout) ||
			errors.Is(err, apperrors.ErrStaleAccount) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			// The remote transaction may still settle; the next interaction reconciles.
			s.needsReconcile.Store(true)
		}
		return nil, err
	}

	snap, err := s.Refresh(ctx)
	if err != nil {
		s.needsReconcile.Store(true)
		return out, fmt.Errorf("transaction %s confirmed but the catalog could not be refreshed: %w", out.Handle.ID, err)
	}
	out.Snapshot = snap
	return out, nil
}

func (s *catalogService) reconcileIfNeeded(ctx context.Context) error {
	if !s.needsReconcile.Load() {
		return nil
	}
	s.LogInfo(ctx, "Reconciling catalog before next mutation")
	if _, err := s.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

func (s *catalogService) requireAccount() (domain.Account, error) {
	account := s.signer.ActiveAccount()
	if account.IsZero() {
		return "", fmt.Errorf("%w: no active account", apperrors.ErrValidation)
	}
	return account, nil
}
