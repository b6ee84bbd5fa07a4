package models

import "time"

// CatalogSnapshot is the header row of a persisted mirror, one per deployment.
type CatalogSnapshot struct {
	Deployment string    `db:"deployment"`
	Sequence   int64     `db:"sequence"`
	SyncedFor  string    `db:"synced_for"`
	SyncedAt   time.Time `db:"synced_at"`
}

// CatalogItem is a persisted mirror row.
type CatalogItem struct {
	Deployment   string   `db:"deployment"`
	ItemID       int64    `db:"item_id"`
	Title        string   `db:"title"`
	Description  string   `db:"description"`
	ImageURL     string   `db:"image_url"`
	Price        string   `db:"price"` // NUMERIC(78,0) read back as text
	Creator      string   `db:"creator"`
	Participants []string `db:"participants"`
}

// CatalogEnrollment is a persisted enrollment index entry.
type CatalogEnrollment struct {
	Deployment string `db:"deployment"`
	Account    string `db:"account"`
	ItemID     int64  `db:"item_id"`
}

// PendingTransaction marks a mutation that was open when it was saved.
type PendingTransaction struct {
	PendingID   string    `db:"pending_id"`
	Deployment  string    `db:"deployment"`
	Account     string    `db:"account"`
	Operation   string    `db:"operation"`
	State       string    `db:"state"`
	LedgerTxID  string    `db:"ledger_tx_id"`
	Payload     []byte    `db:"payload"` // JSONB
	SubmittedAt time.Time `db:"submitted_at"`
}
