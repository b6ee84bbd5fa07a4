package services

import (
	"sort"

	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
)

// EnrollmentIndex is the set of item ids the active account holds.
// It gates duplicate purchases locally; the ledger still has the final say.
type EnrollmentIndex struct {
	account domain.Account
	ids     map[uint64]struct{}
}

// NewEnrollmentIndex creates an empty index for the account.
func NewEnrollmentIndex(account domain.Account) *EnrollmentIndex {
	return &EnrollmentIndex{
		account: account.Normalize(),
		ids:     make(map[uint64]struct{}),
	}
}

// Rebuild replaces the held set wholesale.
func (e *EnrollmentIndex) Rebuild(ownedIDs []uint64) {
	ids := make(map[uint64]struct{}, len(ownedIDs))
	for _, id := range ownedIDs {
		ids[id] = struct{}{}
	}
	e.ids = ids
}

// IsEnrolled reports whether itemID is in the set.
func (e *EnrollmentIndex) IsEnrolled(itemID uint64) bool {
	if e == nil {
		return false
	}
	_, ok := e.ids[itemID]
	return ok
}

// Len returns the number of held items.
func (e *EnrollmentIndex) Len() int {
	if e == nil {
		return 0
	}
	return len(e.ids)
}

// Account returns the account the index was built for.
func (e *EnrollmentIndex) Account() domain.Account {
	if e == nil {
		return ""
	}
	return e.account
}

// Records returns the held ids as enrollment records in ascending id order.
func (e *EnrollmentIndex) Records() []domain.EnrollmentRecord {
	if e == nil {
		return nil
	}
	ids := make([]uint64, 0, len(e.ids))
	for id := range e.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	records := make([]domain.EnrollmentRecord, len(ids))
	for i, id := range ids {
		records[i] = domain.EnrollmentRecord{Account: e.account, ItemID: id}
	}
	return records
}
