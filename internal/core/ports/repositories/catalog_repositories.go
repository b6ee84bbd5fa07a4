package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
)

// CatalogSnapshotReader defines read operations for the persisted mirror.
type CatalogSnapshotReader interface {
	// LoadSnapshot returns the last persisted mirror for a deployment.
	// It returns apperrors.ErrNotFound when nothing has been saved yet.
	LoadSnapshot(ctx context.Context, deployment string) (*domain.CatalogSnapshot, error)
}

// CatalogSnapshotWriter defines write operations for the persisted mirror.
type CatalogSnapshotWriter interface {
	// ReplaceSnapshot swaps the stored mirror for the given one in a single transaction.
	ReplaceSnapshot(ctx context.Context, deployment string, snapshot *domain.CatalogSnapshot) error
}

// PendingTransactionRepository tracks open mutations so a later session can clear them.
type PendingTransactionRepository interface {
	SavePending(ctx context.Context, deployment string, pending domain.PendingTransaction) error
	DeletePending(ctx context.Context, pendingID string) error
	// ClearPendingBefore removes markers left by earlier sessions and returns them.
	ClearPendingBefore(ctx context.Context, deployment string, before time.Time) ([]domain.PendingTransaction, error)
}

// CatalogRepositoryFacade combines all catalog persistence interfaces.
type CatalogRepositoryFacade interface {
	CatalogSnapshotReader
	CatalogSnapshotWriter
	PendingTransactionRepository
}

// CatalogRepositoryWithTx extends CatalogRepositoryFacade with transaction capabilities
type CatalogRepositoryWithTx interface {
	CatalogRepositoryFacade
	TransactionManager
}
