package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager lets a repository group several writes into one database transaction.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	// Rollback is safe to call after Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryProvider holds all repository interfaces needed by services.
// Fields are nil when persistence is disabled.
type RepositoryProvider struct {
	CatalogRepo CatalogRepositoryWithTx
}
