package memory_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/SscSPs/catalog_sync_app/internal/adapters/ledger/memory"
	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	creator = domain.Account("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	student = domain.Account("0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359")
)

var oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

type LedgerTestSuite struct {
	suite.Suite
	ledger  *memory.Ledger
	signer  *memory.Signer
	gateway *memory.Gateway
	ctx     context.Context
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ledger = memory.NewLedger(memory.WithBalance(student, new(big.Int).Mul(oneEther, big.NewInt(2))))
	s.signer = memory.NewSigner(s.ledger, creator)
	s.gateway = memory.NewGateway(s.ledger, s.signer)
}

func (s *LedgerTestSuite) createItem(title string, price *big.Int) {
	h, err := s.gateway.SubmitCreate(s.ctx, s.signer.ActiveAccount(), domain.CreateItemPayload{Title: title, Description: "d", PriceMinorUnits: price})
	s.Require().NoError(err)
	conf, err := s.gateway.AwaitConfirmation(s.ctx, h)
	s.Require().NoError(err)
	s.Require().True(conf.Confirmed)
}

func (s *LedgerTestSuite) TestCreateAssignsSequentialIDs() {
	s.createItem("first", oneEther)
	s.createItem("second", big.NewInt(5))

	items, err := s.gateway.ListItems(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(uint64(0), items[0].ID)
	s.Equal(uint64(1), items[1].ID)
	s.Equal(creator, items[1].Creator)
	s.Empty(items[0].Participants)
}

func (s *LedgerTestSuite) TestPurchaseTransfersValue() {
	s.createItem("course", oneEther)
	s.signer.SwitchAccount(student)

	h, err := s.gateway.SubmitPurchase(s.ctx, s.signer.ActiveAccount(), 0, oneEther)
	s.Require().NoError(err)
	s.Equal(student, h.Account)
	conf, err := s.gateway.AwaitConfirmation(s.ctx, h)
	s.Require().NoError(err)
	s.True(conf.Confirmed)

	owned, err := s.gateway.ListOwnedByAccount(s.ctx, student)
	s.Require().NoError(err)
	s.Equal([]uint64{0}, owned)
	s.Equal(0, s.ledger.Balance(student).Cmp(oneEther))
	s.Nil(s.ledger.Balance(creator))
}

func (s *LedgerTestSuite) TestPurchaseRejections() {
	s.createItem("course", oneEther)
	s.createItem("expensive", new(big.Int).Mul(oneEther, big.NewInt(3)))
	s.signer.SwitchAccount(student)

	tests := []struct {
		name   string
		id     uint64
		value  *big.Int
		reason string
	}{
		{"unknown id", 9, oneEther, memory.ReasonUnknownItem},
		{"wrong price", 0, big.NewInt(1), memory.ReasonIncorrectPrice},
		{"insufficient funds", 1, new(big.Int).Mul(oneEther, big.NewInt(3)), memory.ReasonInsufficientFunds},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.gateway.SubmitPurchase(s.ctx, s.signer.ActiveAccount(), tt.id, tt.value)
			s.ErrorIs(err, apperrors.ErrRejectedByLedger)
			reason, _ := apperrors.RejectionReason(err)
			s.Equal(tt.reason, reason)
		})
	}

	h, err := s.gateway.SubmitPurchase(s.ctx, s.signer.ActiveAccount(), 0, oneEther)
	s.Require().NoError(err)
	_, err = s.gateway.AwaitConfirmation(s.ctx, h)
	s.Require().NoError(err)

	_, err = s.gateway.SubmitPurchase(s.ctx, s.signer.ActiveAccount(), 0, oneEther)
	reason, ok := apperrors.RejectionReason(err)
	s.True(ok)
	s.Equal(memory.ReasonAlreadyEnrolled, reason)
}

func (s *LedgerTestSuite) TestUnreachable() {
	s.ledger.SetUnreachable(true)
	_, err := s.gateway.ListItems(s.ctx)
	s.ErrorIs(err, apperrors.ErrUnreachableLedger)
	_, err = s.gateway.SubmitCreate(s.ctx, s.signer.ActiveAccount(), domain.CreateItemPayload{Title: "x", PriceMinorUnits: big.NewInt(1)})
	s.ErrorIs(err, apperrors.ErrUnreachableLedger)
}

func (s *LedgerTestSuite) TestFailNextRevertsOnMining() {
	s.ledger.FailNext("out of gas")
	h, err := s.gateway.SubmitCreate(s.ctx, s.signer.ActiveAccount(), domain.CreateItemPayload{Title: "x", PriceMinorUnits: big.NewInt(1)})
	s.Require().NoError(err)

	conf, err := s.gateway.AwaitConfirmation(s.ctx, h)
	s.Require().NoError(err)
	s.False(conf.Confirmed)
	s.Equal("out of gas", conf.Reason)

	items, err := s.gateway.ListItems(s.ctx)
	s.Require().NoError(err)
	s.Empty(items)
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func TestLedger_ManualMining(t *testing.T) {
	ledger := memory.NewLedger(memory.WithManualMining())
	gateway := memory.NewGateway(ledger, memory.NewSigner(ledger, creator))
	ctx := context.Background()

	h, err := gateway.SubmitCreate(ctx, creator, domain.CreateItemPayload{Title: "x", PriceMinorUnits: big.NewInt(1)})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = gateway.AwaitConfirmation(waitCtx, h)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	items, err := gateway.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "state changes only once mined")

	ledger.Mine()
	conf, err := gateway.AwaitConfirmation(ctx, h)
	require.NoError(t, err)
	assert.True(t, conf.Confirmed)
	assert.Equal(t, uint64(1), conf.BlockNumber)
}

func TestSigner_SwitchAccountKeepsLatest(t *testing.T) {
	signer := memory.NewSigner(memory.NewLedger(), creator)

	signer.SwitchAccount(student)
	signer.SwitchAccount("0xDBF03B407C01E7CD3CBEA99509D93F8DDDC8C6FB")

	assert.Equal(t, domain.Account("0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb"), signer.ActiveAccount())
	assert.Equal(t, domain.Account("0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb"), <-signer.AccountChanges())
	select {
	case a := <-signer.AccountChanges():
		t.Fatalf("unexpected extra change %s", a)
	default:
	}
}

func TestSigner_RefusesRequestOpenedForAnotherAccount(t *testing.T) {
	ledger := memory.NewLedger()
	signer := memory.NewSigner(ledger, creator)
	gateway := memory.NewGateway(ledger, signer)
	ctx := context.Background()

	signer.SwitchAccount(student)
	_, err := gateway.SubmitCreate(ctx, creator, domain.CreateItemPayload{Title: "x", PriceMinorUnits: big.NewInt(1)})
	assert.ErrorIs(t, err, apperrors.ErrStaleAccount)

	items, err := ledger.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Mixed-case addresses name the same account.
	h, err := gateway.SubmitCreate(ctx, "0xFB6916095CA1DF60BB79CE92CE3EA74C37C5D359", domain.CreateItemPayload{Title: "x", PriceMinorUnits: big.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, student, h.Account)
}
