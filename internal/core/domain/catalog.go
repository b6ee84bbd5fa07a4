package domain

import (
	"math/big"
	"time"

	"github.com/SscSPs/catalog_sync_app/pkg/amount"
)

// CatalogItem is one listing on the ledger: a course, a product or a tournament entry.
type CatalogItem struct {
	ID              uint64    `json:"id"`              // Ledger ordinal, never reused or reordered
	Title           string    `json:"title"`           // Immutable after creation
	Description     string    `json:"description"`     // Immutable after creation
	ImageURL        string    `json:"imageURL"`        // Empty for deployments without images
	PriceMinorUnits *big.Int  `json:"priceMinorUnits"` // Exact ledger amount
	Creator         Account   `json:"creator"`
	Participants    []Account `json:"participants"` // Append-only, no duplicates
}

// PriceDecimal returns the listed price as a decimal string.
func (i CatalogItem) PriceDecimal() string {
	return amount.ToDecimalString(i.PriceMinorUnits)
}

// HasParticipant reports whether the account has joined the item.
func (i CatalogItem) HasParticipant(account Account) bool {
	for _, p := range i.Participants {
		if p.Equal(account) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the item.
func (i CatalogItem) Clone() CatalogItem {
	c := i
	c.PriceMinorUnits = cloneInt(i.PriceMinorUnits)
	if i.Participants != nil {
		c.Participants = append([]Account(nil), i.Participants...)
	}
	return c
}

// EnrollmentRecord states that Account is a participant of ItemID.
// Records are derived on every refresh and never stored.
type EnrollmentRecord struct {
	Account Account `json:"account"`
	ItemID  uint64  `json:"itemID"`
}

// CreateItemPayload holds the already converted values of a new listing.
type CreateItemPayload struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ImageURL        string   `json:"imageURL,omitempty"`
	PriceMinorUnits *big.Int `json:"priceMinorUnits"`
}

// CatalogSnapshot is an immutable view of the mirror as last published.
type CatalogSnapshot struct {
	Items       []CatalogItem      `json:"items"`
	Enrollments []EnrollmentRecord `json:"enrollments"`
	Sequence    uint64             `json:"sequence"` // Refresh sequence that produced this snapshot
	SyncFields
}

// IsEmpty reports whether nothing has been published yet.
func (s *CatalogSnapshot) IsEmpty() bool {
	return s == nil || (s.Sequence == 0 && len(s.Items) == 0)
}

// Item returns the item with the given id if it is part of the snapshot.
func (s *CatalogSnapshot) Item(id uint64) (CatalogItem, bool) {
	if s == nil || id >= uint64(len(s.Items)) {
		return CatalogItem{}, false
	}
	return s.Items[id], true
}

// NewCatalogSnapshot builds a snapshot; items are deep copied.
func NewCatalogSnapshot(items []CatalogItem, enrollments []EnrollmentRecord, seq uint64, account Account, at time.Time) *CatalogSnapshot {
	copied := make([]CatalogItem, len(items))
	for i, item := range items {
		copied[i] = item.Clone()
	}
	return &CatalogSnapshot{
		Items:       copied,
		Enrollments: append([]EnrollmentRecord{}, enrollments...),
		Sequence:    seq,
		SyncFields: SyncFields{
			SyncedAt:  at,
			SyncedFor: account,
		},
	}
}
