package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	portssvc "github.com/SscSPs/catalog_sync_app/internal/core/ports/services"
	"github.com/SscSPs/catalog_sync_app/internal/dto"
	"github.com/SscSPs/catalog_sync_app/internal/handlers"
	"github.com/SscSPs/catalog_sync_app/internal/middleware"
	"github.com/SscSPs/catalog_sync_app/internal/utils"
)

// --- Mock CatalogService ---
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Refresh(ctx context.Context) (*domain.CatalogSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogSnapshot), args.Error(1)
}

func (m *MockCatalogService) Snapshot() *domain.CatalogSnapshot {
	return m.Called().Get(0).(*domain.CatalogSnapshot)
}

func (m *MockCatalogService) IsEnrolled(itemID uint64) bool {
	return m.Called(itemID).Bool(0)
}

func (m *MockCatalogService) ItemsByCreator(creator domain.Account) []domain.CatalogItem {
	return m.Called(creator).Get(0).([]domain.CatalogItem)
}

func (m *MockCatalogService) ActiveAccount() domain.Account {
	return m.Called().Get(0).(domain.Account)
}

func (m *MockCatalogService) Create(ctx context.Context, req dto.CreateItemRequest) (*domain.TxOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TxOutcome), args.Error(1)
}

func (m *MockCatalogService) Purchase(ctx context.Context, itemID uint64, decimalPrice string) (*domain.TxOutcome, error) {
	args := m.Called(ctx, itemID, decimalPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TxOutcome), args.Error(1)
}

func (m *MockCatalogService) PendingTransaction() (*domain.PendingTransaction, bool) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.PendingTransaction), args.Bool(1)
}

func (m *MockCatalogService) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCatalogService) HandleAccountChange(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

// Ensure mock implements the interface
var _ portssvc.CatalogSvcFacade = (*MockCatalogService)(nil)

const (
	creatorAccount = domain.Account("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	buyerAccount   = domain.Account("0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359")
)

// --- Test Suite ---
type CatalogHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCatalog *MockCatalogService
	jwtSecret   string
	snapshot    *domain.CatalogSnapshot
}

func (suite *CatalogHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockCatalog = new(MockCatalogService)

	items := []domain.CatalogItem{
		{ID: 0, Title: "Go basics", Description: "intro", PriceMinorUnits: big.NewInt(100000000000000000), Creator: creatorAccount, Participants: []domain.Account{buyerAccount}},
		{ID: 1, Title: "Go advanced", Description: "next", PriceMinorUnits: big.NewInt(5), Creator: creatorAccount, Participants: []domain.Account{}},
	}
	suite.snapshot = domain.NewCatalogSnapshot(items,
		[]domain.EnrollmentRecord{{Account: buyerAccount, ItemID: 0}},
		3, buyerAccount, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterCatalogRoutes(v1, suite.mockCatalog, &utils.PosthogClientWrapper{})
}

func (suite *CatalogHandlerTestSuite) TearDownTest() {
	suite.mockCatalog.AssertExpectations(suite.T())
}

func (suite *CatalogHandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := utils.GenerateClientToken("client-1", suite.jwtSecret, time.Hour)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CatalogHandlerTestSuite) outcome() *domain.TxOutcome {
	return &domain.TxOutcome{
		Handle: domain.TransactionHandle{
			ID:          "0xabc",
			Operation:   domain.OperationPurchase,
			Account:     buyerAccount,
			SubmittedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		State:        domain.TxConfirmed,
		Confirmation: domain.Confirmation{Confirmed: true, BlockNumber: 42},
		Snapshot:     suite.snapshot,
	}
}

// --- Test Cases ---

func (suite *CatalogHandlerTestSuite) TestGetCatalog_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *CatalogHandlerTestSuite) TestGetCatalog_Success() {
	suite.mockCatalog.On("Snapshot").Return(suite.snapshot).Once()

	w := suite.do(http.MethodGet, "/api/v1/catalog", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CatalogResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Items, 2)
	suite.Equal("0.1", resp.Items[0].Price)
	suite.Equal("100000000000000000", resp.Items[0].PriceMinorUnits)
	suite.True(resp.Items[0].Enrolled)
	suite.False(resp.Items[1].Enrolled)
	suite.Equal([]uint64{0}, resp.EnrolledIDs)
	suite.Equal(uint64(3), resp.Sequence)
}

func (suite *CatalogHandlerTestSuite) TestRefresh_LedgerUnreachable() {
	suite.mockCatalog.On("Refresh", mock.Anything).Return(nil, apperrors.ErrUnreachableLedger).Once()

	w := suite.do(http.MethodPost, "/api/v1/catalog/refresh", nil)

	suite.Equal(http.StatusBadGateway, w.Code)
}

func (suite *CatalogHandlerTestSuite) TestGetEnrollments() {
	suite.mockCatalog.On("Snapshot").Return(suite.snapshot).Once()
	suite.mockCatalog.On("ActiveAccount").Return(buyerAccount).Once()

	w := suite.do(http.MethodGet, "/api/v1/catalog/enrollments", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.EnrollmentsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(buyerAccount.Checksum(), resp.Account)
	suite.Equal([]uint64{0}, resp.ItemIDs)
}

func (suite *CatalogHandlerTestSuite) TestGetPending() {
	suite.Run("none", func() {
		suite.mockCatalog.On("PendingTransaction").Return(nil, false).Once()
		w := suite.do(http.MethodGet, "/api/v1/catalog/pending", nil)
		suite.Equal(http.StatusNoContent, w.Code)
	})

	suite.Run("open", func() {
		pending := &domain.PendingTransaction{
			ID:        "local-1",
			Account:   buyerAccount,
			Operation: domain.OperationCreate,
			State:     domain.TxPending,
		}
		suite.mockCatalog.On("PendingTransaction").Return(pending, true).Once()
		w := suite.do(http.MethodGet, "/api/v1/catalog/pending", nil)
		suite.Equal(http.StatusOK, w.Code)

		var resp dto.PendingTransactionResponse
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		suite.Equal("local-1", resp.ID)
		suite.Equal("PENDING", resp.State)
	})
}

func (suite *CatalogHandlerTestSuite) TestListItemsByCreator() {
	suite.Run("invalid account", func() {
		w := suite.do(http.MethodGet, "/api/v1/catalog/creators/not-an-address/items", nil)
		suite.Equal(http.StatusBadRequest, w.Code)
	})

	suite.Run("success", func() {
		suite.mockCatalog.On("ItemsByCreator", domain.Account(creatorAccount.Checksum())).Return(suite.snapshot.Items).Once()
		w := suite.do(http.MethodGet, "/api/v1/catalog/creators/"+creatorAccount.Checksum()+"/items", nil)
		suite.Equal(http.StatusOK, w.Code)

		var resp []dto.CatalogItemResponse
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		suite.Len(resp, 2)
	})
}

func (suite *CatalogHandlerTestSuite) TestCreateItem_Success() {
	req := dto.CreateItemRequest{Title: "Go basics", Description: "intro", Price: "0.1"}
	out := suite.outcome()
	out.Handle.Operation = domain.OperationCreate
	suite.mockCatalog.On("Create", mock.Anything, req).Return(out, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/catalog/items", req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TxOutcomeResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("0xabc", resp.TransactionID)
	suite.Equal("CREATE", resp.Operation)
	suite.Equal("CONFIRMED", resp.State)
	suite.Equal(uint64(42), resp.BlockNumber)
	suite.Len(resp.Catalog.Items, 2)
}

func (suite *CatalogHandlerTestSuite) TestCreateItem_BindingError() {
	w := suite.do(http.MethodPost, "/api/v1/catalog/items", map[string]string{"title": "missing fields"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCatalog.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *CatalogHandlerTestSuite) TestCreateItem_ErrorMapping() {
	req := dto.CreateItemRequest{Title: "Go basics", Description: "intro", Price: "0.1"}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"invalid amount", apperrors.ErrInvalidAmount, http.StatusBadRequest, ""},
		{"validation", apperrors.ErrValidation, http.StatusBadRequest, ""},
		{"already pending", apperrors.ErrAlreadyPending, http.StatusConflict, ""},
		{"stale account", apperrors.ErrStaleAccount, http.StatusConflict, ""},
		{"rejected", apperrors.NewLedgerRejection("insufficient funds"), http.StatusUnprocessableEntity, "insufficient funds"},
		{"unreachable", apperrors.ErrUnreachableLedger, http.StatusBadGateway, ""},
		{"timeout", apperrors.ErrTimeout, http.StatusGatewayTimeout, ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.mockCatalog.On("Create", mock.Anything, req).Return(nil, tt.err).Once()

			w := suite.do(http.MethodPost, "/api/v1/catalog/items", req)

			suite.Equal(tt.wantStatus, w.Code)
			var body map[string]string
			suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
			suite.Equal(tt.wantReason, body["reason"])
		})
	}
}

func (suite *CatalogHandlerTestSuite) TestPurchaseItem_EmptyBodyUsesListedPrice() {
	suite.mockCatalog.On("Purchase", mock.Anything, uint64(1), "").Return(suite.outcome(), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/catalog/items/1/purchase", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *CatalogHandlerTestSuite) TestPurchaseItem_WithPrice() {
	suite.mockCatalog.On("Purchase", mock.Anything, uint64(0), "0.1").Return(suite.outcome(), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/catalog/items/0/purchase", dto.PurchaseItemRequest{Price: "0.1"})

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *CatalogHandlerTestSuite) TestPurchaseItem_InvalidID() {
	w := suite.do(http.MethodPost, "/api/v1/catalog/items/-1/purchase", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *CatalogHandlerTestSuite) TestPurchaseItem_Errors() {
	suite.Run("already enrolled", func() {
		suite.mockCatalog.On("Purchase", mock.Anything, uint64(0), "").Return(nil, apperrors.ErrAlreadyEnrolled).Once()
		w := suite.do(http.MethodPost, "/api/v1/catalog/items/0/purchase", nil)
		suite.Equal(http.StatusConflict, w.Code)
	})

	suite.Run("unknown item", func() {
		suite.mockCatalog.On("Purchase", mock.Anything, uint64(9), "").Return(nil, apperrors.ErrNotFound).Once()
		w := suite.do(http.MethodPost, "/api/v1/catalog/items/9/purchase", nil)
		suite.Equal(http.StatusNotFound, w.Code)
	})
}

func (suite *CatalogHandlerTestSuite) TestMutations_RateLimited() {
	router := gin.New()
	router.Use(middleware.AuthMiddleware(suite.jwtSecret))
	lim := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 1})
	handlers.RegisterCatalogRoutes(router.Group("/api/v1"), suite.mockCatalog, nil, middleware.RateLimit(lim))
	suite.router = router

	suite.mockCatalog.On("Refresh", mock.Anything).Return(suite.snapshot, nil).Once()
	suite.mockCatalog.On("Snapshot").Return(suite.snapshot).Twice()

	first := suite.do(http.MethodPost, "/api/v1/catalog/refresh", nil)
	suite.Equal(http.StatusOK, first.Code)
	suite.Equal("1", first.Header().Get("X-RateLimit-Limit"))

	second := suite.do(http.MethodPost, "/api/v1/catalog/refresh", nil)
	suite.Equal(http.StatusTooManyRequests, second.Code)

	// Reads are not limited.
	for i := 0; i < 2; i++ {
		w := suite.do(http.MethodGet, "/api/v1/catalog", nil)
		suite.Equal(http.StatusOK, w.Code)
	}
}

func TestCatalogHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerTestSuite))
}
