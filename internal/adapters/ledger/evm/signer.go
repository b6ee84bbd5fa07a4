package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	portsledger "github.com/SscSPs/catalog_sync_app/internal/core/ports/ledger"
)

// KeyedSigner signs with a single private key. Its account never changes.
type KeyedSigner struct {
	client  *Client
	opts    *bind.TransactOpts
	account domain.Account
}

var _ portsledger.Signer = (*KeyedSigner)(nil)

// NewKeyedSigner loads a hex-encoded secp256k1 key for the given chain.
func NewKeyedSigner(client *Client, hexKey string, chainID *big.Int) (*KeyedSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid signer key: %v", apperrors.ErrValidation, err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	return &KeyedSigner{
		client:  client,
		opts:    opts,
		account: toAccount(crypto.PubkeyToAddress(key.PublicKey)),
	}, nil
}

func (s *KeyedSigner) ActiveAccount() domain.Account {
	return s.account
}

func (s *KeyedSigner) SignAndSend(ctx context.Context, req domain.LedgerRequest) (domain.TransactionHandle, error) {
	if !req.From.IsZero() && !req.From.Equal(s.account) {
		return domain.TransactionHandle{}, fmt.Errorf("%w: request opened for %s, signer key is %s",
			apperrors.ErrStaleAccount, req.From, s.account)
	}
	opts := *s.opts
	opts.Context = ctx
	opts.Value = req.Value

	tx, err := s.client.contract.Transact(&opts, req.Method, req.Args...)
	if err != nil {
		return domain.TransactionHandle{}, classify(err)
	}
	return domain.TransactionHandle{
		ID:          tx.Hash().Hex(),
		Operation:   req.Operation,
		Account:     s.account,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// AccountChanges returns nil; a keyed signer is bound to one account.
func (s *KeyedSigner) AccountChanges() <-chan domain.Account {
	return nil
}
