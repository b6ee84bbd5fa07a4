package domain

import (
	"math/big"
	"time"
)

// Operation names the kind of state-changing call sent to the ledger.
type Operation string

const (
	OperationCreate   Operation = "CREATE"
	OperationPurchase Operation = "PURCHASE"
)

// TxState is the lifecycle state of a submitted mutation.
type TxState string

const (
	TxIdle       TxState = "IDLE"
	TxSubmitting TxState = "SUBMITTING"
	TxPending    TxState = "PENDING"
	TxConfirmed  TxState = "CONFIRMED"
	TxFailed     TxState = "FAILED"
)

// IsTerminal reports whether no further transition can happen.
func (s TxState) IsTerminal() bool {
	return s == TxConfirmed || s == TxFailed
}

// LedgerRequest is what the signer authenticates and sends.
type LedgerRequest struct {
	Operation Operation `json:"operation"`
	From      Account   `json:"from"`   // Account the mutation was opened for
	Method    string    `json:"method"` // Contract method name for the active deployment
	Args      []any     `json:"args"`
	Value     *big.Int  `json:"value,omitempty"` // Amount transferred with the call
}

// TransactionHandle identifies a submitted mutation and can be awaited.
type TransactionHandle struct {
	ID          string    `json:"id"` // Transaction hash on the ledger
	Operation   Operation `json:"operation"`
	Account     Account   `json:"account"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// PendingTransaction is a submitted-but-unconfirmed mutation.
// At most one may be open per account.
type PendingTransaction struct {
	ID          string    `json:"id"` // Local id, independent of the ledger hash
	Account     Account   `json:"account"`
	Operation   Operation `json:"operation"`
	Payload     any       `json:"payload"`
	State       TxState   `json:"state"`
	LedgerTxID  string    `json:"ledgerTxID,omitempty"` // Filled once the handle is obtained
	SubmittedAt time.Time `json:"submittedAt"`
}

// Confirmation is the ledger's final word on a transaction.
type Confirmation struct {
	Confirmed   bool      `json:"confirmed"`
	Reason      string    `json:"reason,omitempty"` // Failure reason when not confirmed
	BlockNumber uint64    `json:"blockNumber,omitempty"`
	SettledAt   time.Time `json:"settledAt"`
}

// TxOutcome is returned to callers of a successful create or purchase.
type TxOutcome struct {
	Handle       TransactionHandle `json:"handle"`
	State        TxState           `json:"state"`
	Confirmation Confirmation      `json:"confirmation"`
	Snapshot     *CatalogSnapshot  `json:"snapshot"` // Mirror published after the confirmation
}
