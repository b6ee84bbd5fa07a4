package evm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	portsledger "github.com/SscSPs/catalog_sync_app/internal/core/ports/ledger"
)

// maxOwnedScan bounds the owned-index enumeration.
const maxOwnedScan = 10000

// Backend is the part of ethclient.Client the gateway depends on.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
}

// Client binds one catalog contract on one network.
type Client struct {
	backend  Backend
	profile  Profile
	address  common.Address
	contract *bind.BoundContract
}

// Dial connects to rpcURL and binds the contract at address using profile.
func Dial(ctx context.Context, rpcURL string, address string, profile Profile) (*Client, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: invalid contract address %q", apperrors.ErrValidation, address)
	}
	rpc, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnreachableLedger, err)
	}
	return NewClient(rpc, common.HexToAddress(address), profile)
}

// NewClient binds the contract at address on an existing backend.
func NewClient(backend Backend, address common.Address, profile Profile) (*Client, error) {
	parsed, err := profile.ABI()
	if err != nil {
		return nil, err
	}
	return &Client{
		backend:  backend,
		profile:  profile,
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Profile returns the deployment profile the client was bound with.
func (c *Client) Profile() Profile {
	return c.profile
}

// Close releases the RPC connection when the backend holds one.
func (c *Client) Close() {
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}

// Gateway implements the catalog gateway port against a deployed contract.
type Gateway struct {
	client *Client
	signer portsledger.Signer
	logger *slog.Logger
}

var _ portsledger.CatalogGateway = (*Gateway)(nil)

// NewGateway reads through client and sends mutations through signer.
func NewGateway(client *Client, signer portsledger.Signer, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		client: client,
		signer: signer,
		logger: logger.With(slog.String("component", "evm_gateway"), slog.String("catalog_kind", client.profile.Kind)),
	}
}

func (g *Gateway) ListItems(ctx context.Context) ([]domain.CatalogItem, error) {
	var out []any
	if err := g.client.contract.Call(&bind.CallOpts{Context: ctx}, &out, g.client.profile.ListMethod); err != nil {
		return nil, classify(err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%s returned %d values, want 1", g.client.profile.ListMethod, len(out))
	}
	return decodeItems(g.client.profile, out[0])
}

func (g *Gateway) ListOwnedByAccount(ctx context.Context, account domain.Account) ([]uint64, error) {
	if !account.IsHexAddress() {
		return nil, fmt.Errorf("%w: account %q is not a ledger address", apperrors.ErrValidation, account)
	}
	if g.client.profile.OwnedIndexMethod == "" {
		items, err := g.ListItems(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]uint64, 0)
		for _, item := range items {
			if item.HasParticipant(account) {
				ids = append(ids, item.ID)
			}
		}
		return ids, nil
	}

	holder := common.HexToAddress(account.String())
	opts := &bind.CallOpts{Context: ctx, From: holder}
	ids := make([]uint64, 0)
	for i := int64(0); i < maxOwnedScan; i++ {
		var out []any
		err := g.client.contract.Call(opts, &out, g.client.profile.OwnedIndexMethod, holder, big.NewInt(i))
		if err != nil {
			// Reading past the end of the holder's array reverts.
			if _, reverted := revertReason(err); reverted {
				return ids, nil
			}
			return nil, classify(err)
		}
		id, ok := out[0].(*big.Int)
		if !ok || !id.IsUint64() {
			return nil, fmt.Errorf("%s returned unexpected value %v", g.client.profile.OwnedIndexMethod, out[0])
		}
		ids = append(ids, id.Uint64())
	}
	g.logger.WarnContext(ctx, "Owned index scan hit its bound", slog.Int("bound", maxOwnedScan))
	return ids, nil
}

func (g *Gateway) SubmitCreate(ctx context.Context, from domain.Account, payload domain.CreateItemPayload) (domain.TransactionHandle, error) {
	args := []any{payload.Title, payload.Description}
	if g.client.profile.CreateHasImage {
		args = append(args, payload.ImageURL)
	}
	price := payload.PriceMinorUnits
	if price == nil {
		price = new(big.Int)
	}
	args = append(args, price)

	return g.signer.SignAndSend(ctx, domain.LedgerRequest{
		Operation: domain.OperationCreate,
		From:      from,
		Method:    g.client.profile.CreateMethod,
		Args:      args,
	})
}

func (g *Gateway) SubmitPurchase(ctx context.Context, from domain.Account, itemID uint64, price *big.Int) (domain.TransactionHandle, error) {
	return g.signer.SignAndSend(ctx, domain.LedgerRequest{
		Operation: domain.OperationPurchase,
		From:      from,
		Method:    g.client.profile.PurchaseMethod,
		Args:      []any{new(big.Int).SetUint64(itemID)},
		Value:     price,
	})
}

func (g *Gateway) AwaitConfirmation(ctx context.Context, handle domain.TransactionHandle) (domain.Confirmation, error) {
	hash := common.HexToHash(handle.ID)
	tx, _, err := g.client.backend.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return domain.Confirmation{}, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, handle.ID)
		}
		return domain.Confirmation{}, classify(err)
	}

	receipt, err := bind.WaitMined(ctx, g.client.backend, tx)
	if err != nil {
		return domain.Confirmation{}, classify(err)
	}

	confirmation := domain.Confirmation{
		Confirmed:   receipt.Status != types.ReceiptStatusFailed,
		BlockNumber: receipt.BlockNumber.Uint64(),
		SettledAt:   time.Now().UTC(),
	}
	if !confirmation.Confirmed {
		confirmation.Reason = g.failureReason(ctx, handle, tx, receipt)
	}
	return confirmation, nil
}

// failureReason replays a failed transaction at its block to recover the
// revert reason. Receipts do not carry it.
func (g *Gateway) failureReason(ctx context.Context, handle domain.TransactionHandle, tx *types.Transaction, receipt *types.Receipt) string {
	msg := ethereum.CallMsg{
		From:  common.HexToAddress(handle.Account.String()),
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := g.client.backend.CallContract(ctx, msg, receipt.BlockNumber)
	if err == nil {
		return "transaction reverted"
	}
	if reason, ok := revertReason(err); ok {
		return reason
	}
	g.logger.WarnContext(ctx, "Could not recover revert reason", slog.String("tx_id", handle.ID), slog.String("error", err.Error()))
	return "transaction reverted"
}

// decodeItems reads the unpacked tuple slice by field name.
func decodeItems(p Profile, raw any) ([]domain.CatalogItem, error) {
	rows := reflect.ValueOf(raw)
	if rows.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s returned %T, want a slice", p.ListMethod, raw)
	}

	items := make([]domain.CatalogItem, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		row := reflect.Indirect(rows.Index(i))
		if row.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%s row %d is %s, want a struct", p.ListMethod, i, row.Kind())
		}

		item := domain.CatalogItem{ID: uint64(i), Participants: []domain.Account{}}
		var err error
		if item.Title, err = stringField(row, p.TitleField); err != nil {
			return nil, err
		}
		if item.Description, err = stringField(row, p.DescriptionField); err != nil {
			return nil, err
		}
		if p.ImageField != "" {
			if item.ImageURL, err = stringField(row, p.ImageField); err != nil {
				return nil, err
			}
		}
		price, ok := field(row, p.PriceField).Interface().(*big.Int)
		if !ok || price == nil {
			return nil, fmt.Errorf("field %s of row %d is not a uint256", p.PriceField, i)
		}
		item.PriceMinorUnits = new(big.Int).Set(price)
		if p.CreatorField != "" {
			creator, ok := field(row, p.CreatorField).Interface().(common.Address)
			if !ok {
				return nil, fmt.Errorf("field %s of row %d is not an address", p.CreatorField, i)
			}
			item.Creator = toAccount(creator)
		}
		if p.ParticipantsField != "" {
			participants, ok := field(row, p.ParticipantsField).Interface().([]common.Address)
			if !ok {
				return nil, fmt.Errorf("field %s of row %d is not an address list", p.ParticipantsField, i)
			}
			for _, a := range participants {
				item.Participants = append(item.Participants, toAccount(a))
			}
		}
		items[i] = item
	}
	return items, nil
}

func field(row reflect.Value, name string) reflect.Value {
	f := row.FieldByName(abi.ToCamelCase(name))
	if !f.IsValid() {
		return reflect.ValueOf(struct{}{})
	}
	return f
}

func stringField(row reflect.Value, name string) (string, error) {
	f := field(row, name)
	if f.Kind() != reflect.String {
		return "", fmt.Errorf("field %s is %s, want string", name, f.Kind())
	}
	return f.String(), nil
}

func toAccount(a common.Address) domain.Account {
	return domain.Account(a.Hex()).Normalize()
}
