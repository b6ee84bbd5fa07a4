package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/catalog_sync_app/internal/core/ports/repositories"
	"github.com/SscSPs/catalog_sync_app/internal/models"
	"github.com/SscSPs/catalog_sync_app/internal/utils/mapping"
)

type PgxCatalogRepository struct {
	BaseRepository
}

// newPgxCatalogRepository creates a new repository for persisted catalog state.
func newPgxCatalogRepository(pool *pgxpool.Pool) portsrepo.CatalogRepositoryWithTx {
	return &PgxCatalogRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.CatalogRepositoryWithTx = (*PgxCatalogRepository)(nil)

// ReplaceSnapshot swaps the stored mirror of a deployment in one transaction.
func (r *PgxCatalogRepository) ReplaceSnapshot(ctx context.Context, deployment string, snapshot *domain.CatalogSnapshot) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	// Items and enrollments cascade.
	if _, err := tx.Exec(ctx, `DELETE FROM catalog_snapshots WHERE deployment = $1;`, deployment); err != nil {
		return fmt.Errorf("failed to clear snapshot of %s: %w", deployment, err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO catalog_snapshots (deployment, sequence, synced_for, synced_at)
		VALUES ($1, $2, $3, $4);
	`, deployment, int64(snapshot.Sequence), snapshot.SyncedFor.String(), snapshot.SyncedAt)

	itemQuery := `
		INSERT INTO catalog_items (deployment, item_id, title, description, image_url, price, creator, participants)
		VALUES ($1, $2, $3, $4, $5, CAST($6::text AS NUMERIC), $7, $8);
	`
	for _, item := range snapshot.Items {
		m := mapping.ToModelCatalogItem(deployment, item)
		batch.Queue(itemQuery, m.Deployment, m.ItemID, m.Title, m.Description, m.ImageURL, m.Price, m.Creator, m.Participants)
	}

	enrollmentQuery := `
		INSERT INTO catalog_enrollments (deployment, account, item_id)
		VALUES ($1, $2, $3);
	`
	for _, rec := range snapshot.Enrollments {
		batch.Queue(enrollmentQuery, deployment, rec.Account.String(), int64(rec.ItemID))
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write snapshot %d of %s: %w", snapshot.Sequence, deployment, err)
	}
	return r.Commit(ctx, tx)
}

// LoadSnapshot returns the stored mirror of a deployment.
func (r *PgxCatalogRepository) LoadSnapshot(ctx context.Context, deployment string) (*domain.CatalogSnapshot, error) {
	var header models.CatalogSnapshot
	err := r.Pool.QueryRow(ctx, `
		SELECT deployment, sequence, synced_for, synced_at
		FROM catalog_snapshots
		WHERE deployment = $1;
	`, deployment).Scan(&header.Deployment, &header.Sequence, &header.SyncedFor, &header.SyncedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no snapshot for %s", apperrors.ErrNotFound, deployment)
		}
		return nil, fmt.Errorf("failed to load snapshot of %s: %w", deployment, err)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT deployment, item_id, title, description, image_url, price::text AS price, creator, participants
		FROM catalog_items
		WHERE deployment = $1
		ORDER BY item_id;
	`, deployment)
	if err != nil {
		return nil, fmt.Errorf("failed to load items of %s: %w", deployment, err)
	}
	itemRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CatalogItem])
	if err != nil {
		return nil, fmt.Errorf("failed to scan items of %s: %w", deployment, err)
	}
	items := make([]domain.CatalogItem, 0, len(itemRows))
	for _, row := range itemRows {
		item, err := mapping.ToDomainCatalogItem(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	rows, err = r.Pool.Query(ctx, `
		SELECT deployment, account, item_id
		FROM catalog_enrollments
		WHERE deployment = $1
		ORDER BY item_id;
	`, deployment)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments of %s: %w", deployment, err)
	}
	enrollmentRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.CatalogEnrollment])
	if err != nil {
		return nil, fmt.Errorf("failed to scan enrollments of %s: %w", deployment, err)
	}
	enrollments := make([]domain.EnrollmentRecord, len(enrollmentRows))
	for i, row := range enrollmentRows {
		enrollments[i] = domain.EnrollmentRecord{Account: domain.Account(row.Account), ItemID: uint64(row.ItemID)}
	}

	return domain.NewCatalogSnapshot(items, enrollments, uint64(header.Sequence), domain.Account(header.SyncedFor), header.SyncedAt), nil
}

// SavePending records an open mutation.
func (r *PgxCatalogRepository) SavePending(ctx context.Context, deployment string, pending domain.PendingTransaction) error {
	m, err := mapping.ToModelPendingTransaction(deployment, pending)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, `
		INSERT INTO pending_transactions (pending_id, deployment, account, operation, state, ledger_tx_id, payload, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pending_id) DO UPDATE SET
			state = EXCLUDED.state,
			ledger_tx_id = EXCLUDED.ledger_tx_id;
	`, m.PendingID, m.Deployment, m.Account, m.Operation, m.State, m.LedgerTxID, m.Payload, m.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to save pending transaction %s: %w", m.PendingID, err)
	}
	return nil
}

// DeletePending removes a marker. Removing an unknown marker is not an error.
func (r *PgxCatalogRepository) DeletePending(ctx context.Context, pendingID string) error {
	if _, err := r.Pool.Exec(ctx, `DELETE FROM pending_transactions WHERE pending_id = $1;`, pendingID); err != nil {
		return fmt.Errorf("failed to delete pending transaction %s: %w", pendingID, err)
	}
	return nil
}

// ClearPendingBefore deletes and returns markers submitted before the given time.
func (r *PgxCatalogRepository) ClearPendingBefore(ctx context.Context, deployment string, before time.Time) ([]domain.PendingTransaction, error) {
	rows, err := r.Pool.Query(ctx, `
		DELETE FROM pending_transactions
		WHERE deployment = $1 AND submitted_at < $2
		RETURNING pending_id, deployment, account, operation, state, ledger_tx_id, payload, submitted_at;
	`, deployment, before)
	if err != nil {
		return nil, fmt.Errorf("failed to clear pending transactions of %s: %w", deployment, err)
	}
	cleared, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PendingTransaction])
	if err != nil {
		return nil, fmt.Errorf("failed to scan cleared pending transactions: %w", err)
	}

	result := make([]domain.PendingTransaction, len(cleared))
	for i, m := range cleared {
		result[i] = mapping.ToDomainPendingTransaction(m)
	}
	return result, nil
}
