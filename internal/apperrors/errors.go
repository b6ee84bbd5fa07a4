package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidAmount indicates a user-entered price that is not a valid non-negative
// decimal or carries more fractional digits than the ledger unit supports.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrAlreadyEnrolled is returned when the active account already holds the item.
var ErrAlreadyEnrolled = errors.New("already enrolled")

// ErrAlreadyPending is returned when a mutation is already in flight for the account.
var ErrAlreadyPending = errors.New("a transaction is already pending for this account")

// ErrUnreachableLedger indicates a transport-level failure talking to the ledger.
// The whole operation is safe to retry.
var ErrUnreachableLedger = errors.New("ledger unreachable")

// ErrRejectedByLedger indicates the ledger authoritatively refused the call.
// Use errors.As with *LedgerRejection to read the reason.
var ErrRejectedByLedger = errors.New("rejected by ledger")

// ErrTimeout indicates the local wait for confirmation exceeded its deadline.
// It does not imply that the remote transaction failed.
var ErrTimeout = errors.New("timed out waiting for confirmation")

// ErrStaleAccount indicates the active account changed while a mutation was in flight.
var ErrStaleAccount = errors.New("active account changed during transaction")

// LedgerRejection carries the ledger's reason string verbatim.
type LedgerRejection struct {
	Reason string
}

// NewLedgerRejection creates a rejection error for the given reason.
func NewLedgerRejection(reason string) *LedgerRejection {
	return &LedgerRejection{Reason: reason}
}

func (e *LedgerRejection) Error() string {
	if e.Reason == "" {
		return ErrRejectedByLedger.Error()
	}
	return fmt.Sprintf("%s: %s", ErrRejectedByLedger.Error(), e.Reason)
}

// Is lets errors.Is match ErrRejectedByLedger.
func (e *LedgerRejection) Is(target error) bool {
	return target == ErrRejectedByLedger
}

// RejectionReason returns the ledger's reason if err is a ledger rejection.
func RejectionReason(err error) (string, bool) {
	var rejection *LedgerRejection
	if errors.As(err, &rejection) {
		return rejection.Reason, true
	}
	return "", false
}
