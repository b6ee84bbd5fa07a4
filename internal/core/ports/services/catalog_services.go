package services

import (
	"context"

	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	"github.com/SscSPs/catalog_sync_app/internal/dto"
)

// CatalogReaderSvc defines read operations on the local mirror.
type CatalogReaderSvc interface {
	// Refresh reloads the mirror from the ledger and publishes it atomically.
	Refresh(ctx context.Context) (*domain.CatalogSnapshot, error)

	// Snapshot returns the last published mirror without contacting the ledger.
	Snapshot() *domain.CatalogSnapshot

	// IsEnrolled reports whether the active account holds the item, per the last refresh.
	IsEnrolled(itemID uint64) bool

	// ItemsByCreator filters the mirror by creator account.
	ItemsByCreator(creator domain.Account) []domain.CatalogItem

	// ActiveAccount returns the account the mirror was built for.
	ActiveAccount() domain.Account
}

// CatalogWriterSvc defines the state-changing catalog operations.
type CatalogWriterSvc interface {
	// Create lists a new item and returns once the mirror reflects it.
	Create(ctx context.Context, req dto.CreateItemRequest) (*domain.TxOutcome, error)

	// Purchase buys or joins an item and returns once the mirror reflects it.
	// An empty decimalPrice uses the item's listed price.
	Purchase(ctx context.Context, itemID uint64, decimalPrice string) (*domain.TxOutcome, error)

	// PendingTransaction returns the open mutation of the active account, if any.
	PendingTransaction() (*domain.PendingTransaction, bool)
}

// CatalogSessionSvc manages the lifetime of a catalog session.
type CatalogSessionSvc interface {
	// Start clears markers left by earlier sessions, performs the first refresh
	// and begins watching the signer for account changes until ctx is done.
	Start(ctx context.Context) error

	// HandleAccountChange invalidates account-bound state and refreshes for the new account.
	HandleAccountChange(ctx context.Context, account domain.Account) error
}

// CatalogSvcFacade combines all catalog service interfaces
type CatalogSvcFacade interface {
	CatalogReaderSvc
	CatalogWriterSvc
	CatalogSessionSvc
}
