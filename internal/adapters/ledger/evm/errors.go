package evm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
)

const (
	revertedMarker     = "execution reverted"
	insufficientMarker = "insufficient funds"
)

// classify maps node and transport errors onto the catalog error taxonomy.
// Context errors pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if reason, ok := revertReason(err); ok {
		return apperrors.NewLedgerRejection(reason)
	}
	if strings.Contains(strings.ToLower(err.Error()), insufficientMarker) {
		return apperrors.NewLedgerRejection(insufficientMarker)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrUnreachableLedger, err)
}

// revertReason extracts the Error(string) reason of a reverted call.
func revertReason(err error) (string, bool) {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if encoded, ok := dataErr.ErrorData().(string); ok {
			if data, decodeErr := hexutil.Decode(encoded); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason, true
				}
			}
		}
	}

	msg := err.Error()
	i := strings.Index(msg, revertedMarker)
	if i < 0 {
		return "", false
	}
	reason := strings.TrimLeft(msg[i+len(revertedMarker):], ": ")
	if reason == "" {
		reason = revertedMarker
	}
	return reason, true
}
