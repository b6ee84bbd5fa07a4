package services_test

import (
	"context"
	"math/big"
	"time"

	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	portsledger "github.com/SscSPs/catalog_sync_app/internal/core/ports/ledger"
	portsrepo "github.com/SscSPs/catalog_sync_app/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock CatalogGateway ---
type MockCatalogGateway struct {
	mock.Mock
}

var _ portsledger.CatalogGateway = (*MockCatalogGateway)(nil)

func (m *MockCatalogGateway) ListItems(ctx context.Context) ([]domain.CatalogItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

func (m *MockCatalogGateway) ListOwnedByAccount(ctx context.Context, account domain.Account) ([]uint64, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

func (m *MockCatalogGateway) SubmitCreate(ctx context.Context, from domain.Account, payload domain.CreateItemPayload) (domain.TransactionHandle, error) {
	args := m.Called(ctx, from, payload)
	return args.Get(0).(domain.TransactionHandle), args.Error(1)
}

func (m *MockCatalogGateway) SubmitPurchase(ctx context.Context, from domain.Account, itemID uint64, price *big.Int) (domain.TransactionHandle, error) {
	args := m.Called(ctx, from, itemID, price)
	return args.Get(0).(domain.TransactionHandle), args.Error(1)
}

func (m *MockCatalogGateway) AwaitConfirmation(ctx context.Context, handle domain.TransactionHandle) (domain.Confirmation, error) {
	args := m.Called(ctx, handle)
	return args.Get(0).(domain.Confirmation), args.Error(1)
}

// --- Mock Signer ---
type MockSigner struct {
	mock.Mock
}

var _ portsledger.Signer = (*MockSigner)(nil)

func (m *MockSigner) ActiveAccount() domain.Account {
	args := m.Called()
	return args.Get(0).(domain.Account)
}

func (m *MockSigner) SignAndSend(ctx context.Context, req domain.LedgerRequest) (domain.TransactionHandle, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.TransactionHandle), args.Error(1)
}

func (m *MockSigner) AccountChanges() <-chan domain.Account {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(<-chan domain.Account)
}

// --- Mock CatalogRepository ---
type MockCatalogRepository struct {
	mock.Mock
}

var _ portsrepo.CatalogRepositoryFacade = (*MockCatalogRepository)(nil)

func (m *MockCatalogRepository) LoadSnapshot(ctx context.Context, deployment string) (*domain.CatalogSnapshot, error) {
	args := m.Called(ctx, deployment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogSnapshot), args.Error(1)
}

func (m *MockCatalogRepository) ReplaceSnapshot(ctx context.Context, deployment string, snapshot *domain.CatalogSnapshot) error {
	args := m.Called(ctx, deployment, snapshot)
	return args.Error(0)
}

func (m *MockCatalogRepository) SavePending(ctx context.Context, deployment string, pending domain.PendingTransaction) error {
	args := m.Called(ctx, deployment, pending)
	return args.Error(0)
}

func (m *MockCatalogRepository) DeletePending(ctx context.Context, pendingID string) error {
	args := m.Called(ctx, pendingID)
	return args.Error(0)
}

func (m *MockCatalogRepository) ClearPendingBefore(ctx context.Context, deployment string, before time.Time) ([]domain.PendingTransaction, error) {
	args := m.Called(ctx, deployment, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingTransaction), args.Error(1)
}
