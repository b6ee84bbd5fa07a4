package domain

import (
	"math/big"
	"time"
)

// SyncFields records when a mirrored record was last reconciled with the ledger.
type SyncFields struct {
	SyncedAt  time.Time `json:"syncedAt"`
	SyncedFor Account   `json:"syncedFor"` // Account active during the refresh
}

// cloneInt returns an independent copy so callers never share ledger amounts.
func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
