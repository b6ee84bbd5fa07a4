package memory

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	portsledger "github.com/SscSPs/catalog_sync_app/internal/core/ports/ledger"
)

// Method names used on requests sent to the in-memory ledger.
const (
	MethodCreate   = "create"
	MethodPurchase = "purchase"
)

// Gateway adapts a Ledger to the catalog gateway port.
type Gateway struct {
	ledger *Ledger
	signer portsledger.Signer
}

var _ portsledger.CatalogGateway = (*Gateway)(nil)

// NewGateway sends mutations through signer and reads from ledger.
func NewGateway(ledger *Ledger, signer portsledger.Signer) *Gateway {
	return &Gateway{ledger: ledger, signer: signer}
}

func (g *Gateway) ListItems(ctx context.Context) ([]domain.CatalogItem, error) {
	return g.ledger.Items(ctx)
}

func (g *Gateway) ListOwnedByAccount(ctx context.Context, account domain.Account) ([]uint64, error) {
	return g.ledger.OwnedBy(ctx, account)
}

func (g *Gateway) SubmitCreate(ctx context.Context, from domain.Account, payload domain.CreateItemPayload) (domain.TransactionHandle, error) {
	return g.signer.SignAndSend(ctx, domain.LedgerRequest{
		Operation: domain.OperationCreate,
		From:      from,
		Method:    MethodCreate,
		Args:      []any{payload},
	})
}

func (g *Gateway) SubmitPurchase(ctx context.Context, from domain.Account, itemID uint64, price *big.Int) (domain.TransactionHandle, error) {
	return g.signer.SignAndSend(ctx, domain.LedgerRequest{
		Operation: domain.OperationPurchase,
		From:      from,
		Method:    MethodPurchase,
		Args:      []any{itemID},
		Value:     price,
	})
}

func (g *Gateway) AwaitConfirmation(ctx context.Context, handle domain.TransactionHandle) (domain.Confirmation, error) {
	return g.ledger.Await(ctx, handle.ID)
}

// Signer submits requests to a Ledger as a switchable account.
type Signer struct {
	ledger  *Ledger
	mu      sync.RWMutex
	account domain.Account
	changes chan domain.Account
}

var _ portsledger.Signer = (*Signer)(nil)

// NewSigner creates a signer acting as account.
func NewSigner(ledger *Ledger, account domain.Account) *Signer {
	return &Signer{
		ledger:  ledger,
		account: account.Normalize(),
		changes: make(chan domain.Account, 1),
	}
}

func (s *Signer) ActiveAccount() domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

func (s *Signer) SignAndSend(ctx context.Context, req domain.LedgerRequest) (domain.TransactionHandle, error) {
	// Held across Submit so SwitchAccount cannot land between check and send.
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := s.account
	if !req.From.IsZero() && !req.From.Equal(from) {
		return domain.TransactionHandle{}, fmt.Errorf("%w: request opened for %s, active account is %s",
			apperrors.ErrStaleAccount, req.From, from)
	}
	txID, err := s.ledger.Submit(ctx, from, req)
	if err != nil {
		return domain.TransactionHandle{}, err
	}
	return domain.TransactionHandle{
		ID:          txID,
		Operation:   req.Operation,
		Account:     from,
		SubmittedAt: s.ledger.now().UTC(),
	}, nil
}

func (s *Signer) AccountChanges() <-chan domain.Account {
	return s.changes
}

// SwitchAccount changes the active account and notifies watchers. Only the
// latest change is kept if nobody has read the previous one.
func (s *Signer) SwitchAccount(account domain.Account) {
	account = account.Normalize()
	s.mu.Lock()
	s.account = account
	s.mu.Unlock()

	for {
		select {
		case s.changes <- account:
			return
		default:
		}
		select {
		case <-s.changes:
		default:
		}
	}
}
