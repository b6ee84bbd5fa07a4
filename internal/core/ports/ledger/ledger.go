package ledger

import (
	"context"
	"math/big"

	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
)

// CatalogQuerier defines the read-only ledger queries.
type CatalogQuerier interface {
	// ListItems returns every item in ledger id order; the slice index equals the item id.
	ListItems(ctx context.Context) ([]domain.CatalogItem, error)

	// ListOwnedByAccount returns the ids the account participates in. Order is not guaranteed.
	ListOwnedByAccount(ctx context.Context, account domain.Account) ([]uint64, error)
}

// CatalogCommander defines the state-changing ledger calls.
type CatalogCommander interface {
	// SubmitCreate sends a create request signed as from and returns without waiting for
	// confirmation. It fails with apperrors.ErrStaleAccount when from is no longer active.
	SubmitCreate(ctx context.Context, from domain.Account, payload domain.CreateItemPayload) (domain.TransactionHandle, error)

	// SubmitPurchase sends a purchase request signed as from, carrying price as the transferred value.
	SubmitPurchase(ctx context.Context, from domain.Account, itemID uint64, price *big.Int) (domain.TransactionHandle, error)

	// AwaitConfirmation blocks until the ledger durably accepted or rejected the transaction.
	AwaitConfirmation(ctx context.Context, handle domain.TransactionHandle) (domain.Confirmation, error)
}

// CatalogGateway combines the query and command sides of the ledger boundary.
type CatalogGateway interface {
	CatalogQuerier
	CatalogCommander
}

// Signer authenticates requests on behalf of the active account.
type Signer interface {
	// ActiveAccount returns the account currently authorizing requests.
	ActiveAccount() domain.Account

	// SignAndSend signs the request and hands it to the ledger. A request whose
	// From is set and differs from the active account is refused with
	// apperrors.ErrStaleAccount and never sent.
	SignAndSend(ctx context.Context, req domain.LedgerRequest) (domain.TransactionHandle, error)

	// AccountChanges delivers the new account whenever it changes out-of-band.
	// A signer whose account can never change may return nil.
	AccountChanges() <-chan domain.Account
}
