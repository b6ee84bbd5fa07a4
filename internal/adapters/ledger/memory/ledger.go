// Package memory provides an in-process ledger with the same acceptance rules
// as the deployed catalog contracts. It backs local development and tests.
package memory

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
)

// Rejection reasons, as reported by the contracts.
const (
	ReasonUnknownItem       = "item does not exist"
	ReasonIncorrectPrice    = "incorrect price"
	ReasonAlreadyEnrolled   = "already enrolled"
	ReasonInsufficientFunds = "insufficient funds"
	ReasonEmptyTitle        = "title is required"
)

type transaction struct {
	id           string
	from         domain.Account
	req          domain.LedgerRequest
	done         chan struct{}
	confirmation domain.Confirmation
}

// Ledger holds catalog state and mines submitted transactions in order.
type Ledger struct {
	mu          sync.Mutex
	items       []domain.CatalogItem
	balances    map[domain.Account]*big.Int
	txs         map[string]*transaction
	queue       []*transaction
	block       uint64
	manual      bool
	unreachable bool
	failNext    string
	now         func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithBalance funds an account. Accounts without a balance are not checked for funds.
func WithBalance(account domain.Account, balance *big.Int) Option {
	return func(l *Ledger) {
		l.balances[account.Normalize()] = new(big.Int).Set(balance)
	}
}

// WithManualMining keeps submitted transactions pending until Mine is called.
func WithManualMining() Option {
	return func(l *Ledger) {
		l.manual = true
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger creates an empty ledger.
func NewLedger(options ...Option) *Ledger {
	l := &Ledger{
		balances: make(map[domain.Account]*big.Int),
		txs:      make(map[string]*transaction),
		now:      time.Now,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// SetUnreachable makes every call fail as if the node could not be reached.
func (l *Ledger) SetUnreachable(unreachable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unreachable = unreachable
}

// FailNext makes the next mined transaction revert with reason.
func (l *Ledger) FailNext(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = reason
}

// Balance returns the account's balance, or nil when it is not tracked.
func (l *Ledger) Balance(account domain.Account) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.balances[account.Normalize()]; ok {
		return new(big.Int).Set(b)
	}
	return nil
}

// Items returns a copy of every item in id order.
func (l *Ledger) Items(ctx context.Context) ([]domain.CatalogItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.reachable(ctx); err != nil {
		return nil, err
	}
	items := make([]domain.CatalogItem, len(l.items))
	for i, item := range l.items {
		items[i] = item.Clone()
	}
	return items, nil
}

// OwnedBy returns the ids the account participates in.
func (l *Ledger) OwnedBy(ctx context.Context, account domain.Account) ([]uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.reachable(ctx); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0)
	for _, item := range l.items {
		if item.HasParticipant(account) {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

// Submit checks the request against current state and queues it. Requests
// that would revert are rejected here without being queued.
func (l *Ledger) Submit(ctx context.Context, from domain.Account, req domain.LedgerRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.reachable(ctx); err != nil {
		return "", err
	}
	if reason := l.check(from, req); reason != "" {
		return "", apperrors.NewLedgerRejection(reason)
	}

	tx := &transaction{
		id:   "0x" + uuid.NewString(),
		from: from.Normalize(),
		req:  req,
		done: make(chan struct{}),
	}
	l.txs[tx.id] = tx
	l.queue = append(l.queue, tx)
	if !l.manual {
		l.mineLocked()
	}
	return tx.id, nil
}

// Mine settles every queued transaction in one block.
func (l *Ledger) Mine() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mineLocked()
}

// Await blocks until the transaction is mined or ctx is done.
func (l *Ledger) Await(ctx context.Context, txID string) (domain.Confirmation, error) {
	l.mu.Lock()
	tx, ok := l.txs[txID]
	err := l.reachable(ctx)
	l.mu.Unlock()
	if err != nil {
		return domain.Confirmation{}, err
	}
	if !ok {
		return domain.Confirmation{}, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, txID)
	}

	select {
	case <-tx.done:
		l.mu.Lock()
		defer l.mu.Unlock()
		return tx.confirmation, nil
	case <-ctx.Done():
		return domain.Confirmation{}, ctx.Err()
	}
}

func (l *Ledger) reachable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.unreachable {
		return fmt.Errorf("%w: in-memory ledger is offline", apperrors.ErrUnreachableLedger)
	}
	return nil
}

func (l *Ledger) mineLocked() {
	if len(l.queue) == 0 {
		return
	}
	l.block++
	settledAt := l.now().UTC()
	for _, tx := range l.queue {
		reason := l.failNext
		l.failNext = ""
		if reason == "" {
			reason = l.check(tx.from, tx.req)
		}
		if reason == "" {
			l.apply(tx.from, tx.req)
		}
		tx.confirmation = domain.Confirmation{
			Confirmed:   reason == "",
			Reason:      reason,
			BlockNumber: l.block,
			SettledAt:   settledAt,
		}
		close(tx.done)
	}
	l.queue = nil
}

// check returns the revert reason the request would produce, or "".
func (l *Ledger) check(from domain.Account, req domain.LedgerRequest) string {
	switch req.Operation {
	case domain.OperationCreate:
		payload, ok := createPayload(req)
		if !ok {
			return "malformed create request"
		}
		if payload.Title == "" {
			return ReasonEmptyTitle
		}
		return ""
	case domain.OperationPurchase:
		id, ok := purchaseID(req)
		if !ok {
			return "malformed purchase request"
		}
		if id >= uint64(len(l.items)) {
			return ReasonUnknownItem
		}
		item := l.items[id]
		value := req.Value
		if value == nil {
			value = new(big.Int)
		}
		if item.PriceMinorUnits.Cmp(value) != 0 {
			return ReasonIncorrectPrice
		}
		if item.HasParticipant(from) {
			return ReasonAlreadyEnrolled
		}
		if balance, tracked := l.balances[from.Normalize()]; tracked && balance.Cmp(value) < 0 {
			return ReasonInsufficientFunds
		}
		return ""
	default:
		return fmt.Sprintf("unsupported operation %q", req.Operation)
	}
}

func (l *Ledger) apply(from domain.Account, req domain.LedgerRequest) {
	switch req.Operation {
	case domain.OperationCreate:
		payload, _ := createPayload(req)
		price := new(big.Int)
		if payload.PriceMinorUnits != nil {
			price.Set(payload.PriceMinorUnits)
		}
		l.items = append(l.items, domain.CatalogItem{
			ID:              uint64(len(l.items)),
			Title:           payload.Title,
			Description:     payload.Description,
			ImageURL:        payload.ImageURL,
			PriceMinorUnits: price,
			Creator:         from,
			Participants:    []domain.Account{},
		})
	case domain.OperationPurchase:
		id, _ := purchaseID(req)
		item := &l.items[id]
		item.Participants = append(item.Participants, from)
		if balance, tracked := l.balances[from.Normalize()]; tracked {
			balance.Sub(balance, req.Value)
		}
		if balance, tracked := l.balances[item.Creator.Normalize()]; tracked {
			balance.Add(balance, req.Value)
		}
	}
}

func createPayload(req domain.LedgerRequest) (domain.CreateItemPayload, bool) {
	if len(req.Args) != 1 {
		return domain.CreateItemPayload{}, false
	}
	payload, ok := req.Args[0].(domain.CreateItemPayload)
	return payload, ok
}

func purchaseID(req domain.LedgerRequest) (uint64, bool) {
	if len(req.Args) != 1 {
		return 0, false
	}
	id, ok := req.Args[0].(uint64)
	return id, ok
}
