package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
)

func TestProfiles_ABI(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			p, err := ProfileByKind(kind)
			require.NoError(t, err)

			parsed, err := p.ABI()
			require.NoError(t, err)

			list, ok := parsed.Methods[p.ListMethod]
			require.True(t, ok)
			assert.True(t, list.IsConstant())
			require.Len(t, list.Outputs, 1)

			purchase, ok := parsed.Methods[p.PurchaseMethod]
			require.True(t, ok)
			assert.True(t, purchase.IsPayable())

			create, ok := parsed.Methods[p.CreateMethod]
			require.True(t, ok)
			wantInputs := 3
			if p.CreateHasImage {
				wantInputs = 4
			}
			assert.Len(t, create.Inputs, wantInputs)

			if p.OwnedIndexMethod != "" {
				_, ok := parsed.Methods[p.OwnedIndexMethod]
				assert.True(t, ok)
			}
		})
	}
}

func TestProfileByKind_Unknown(t *testing.T) {
	_, err := ProfileByKind("concert")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	p, err := ProfileByKind(" Course ")
	require.NoError(t, err)
	assert.Equal(t, "enroll", p.PurchaseMethod)
}

type courseRow struct {
	Title            string
	Description      string
	Price            *big.Int
	Creator          common.Address
	EnrolledStudents []common.Address
}

type tournamentRow struct {
	Name         string
	Description  string
	ImageURL     string
	EntryFee     *big.Int
	Participants []common.Address
}

func TestDecodeItems_Course(t *testing.T) {
	p, _ := ProfileByKind("course")
	creator := common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	student := common.HexToAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")

	items, err := decodeItems(p, []courseRow{
		{Title: "Intro", Description: "desc", Price: big.NewInt(100), Creator: creator, EnrolledStudents: []common.Address{student}},
		{Title: "Next", Description: "more", Price: big.NewInt(5), Creator: creator},
	})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint64(1), items[1].ID)
	assert.Equal(t, "Intro", items[0].Title)
	assert.Equal(t, int64(100), items[0].PriceMinorUnits.Int64())
	assert.Equal(t, domain.Account("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), items[0].Creator)
	assert.True(t, items[0].HasParticipant("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"))
	assert.NotNil(t, items[1].Participants)
	assert.Empty(t, items[1].Participants)
}

func TestDecodeItems_Tournament(t *testing.T) {
	p, _ := ProfileByKind("tournament")

	items, err := decodeItems(p, []tournamentRow{
		{Name: "Finals", Description: "desc", ImageURL: "https://img/1.png", EntryFee: big.NewInt(7)},
	})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Finals", items[0].Title)
	assert.Equal(t, "https://img/1.png", items[0].ImageURL)
	assert.True(t, items[0].Creator.IsZero())
}

func TestDecodeItems_Mismatch(t *testing.T) {
	p, _ := ProfileByKind("tournament")
	_, err := decodeItems(p, []courseRow{{Title: "x", Price: big.NewInt(1)}})
	assert.Error(t, err)

	_, err = decodeItems(p, "not a slice")
	assert.Error(t, err)
}

type dataError struct {
	msg  string
	data any
}

func (e dataError) Error() string  { return e.msg }
func (e dataError) ErrorData() any { return e.data }

func revertData(t *testing.T, reason string) string {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	return hexutil.Encode(append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantIs     error
		wantReason string
	}{
		{"revert data", dataError{msg: "execution reverted", data: revertData(t, "Incorrect price")}, apperrors.ErrRejectedByLedger, "Incorrect price"},
		{"revert message", errors.New("execution reverted: Already enrolled"), apperrors.ErrRejectedByLedger, "Already enrolled"},
		{"bare revert", errors.New("execution reverted"), apperrors.ErrRejectedByLedger, "execution reverted"},
		{"insufficient funds", errors.New("insufficient funds for gas * price + value: balance 0"), apperrors.ErrRejectedByLedger, "insufficient funds"},
		{"transport", errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), apperrors.ErrUnreachableLedger, ""},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), context.DeadlineExceeded, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			assert.ErrorIs(t, err, tt.wantIs)
			reason, ok := apperrors.RejectionReason(err)
			assert.Equal(t, tt.wantReason != "", ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}

	assert.NoError(t, classify(nil))
}

func TestKeyedSigner_RefusesRequestOpenedForAnotherAccount(t *testing.T) {
	// Well-known development key; its address is 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266.
	signer, err := NewKeyedSigner(nil, "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", big.NewInt(1337))
	require.NoError(t, err)
	assert.Equal(t, domain.Account("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"), signer.ActiveAccount())

	_, err = signer.SignAndSend(context.Background(), domain.LedgerRequest{
		Operation: domain.OperationCreate,
		From:      "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		Method:    "createCourse",
	})
	assert.ErrorIs(t, err, apperrors.ErrStaleAccount)
}

func TestToAccount_ChecksumMatchesGoEthereum(t *testing.T) {
	addresses := []string{
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359",
		"0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb",
		"0xd1220a0cf47c7b9be7a2e6ba89f429762e7b9adb",
		"0x0000000000000000000000000000000000000000",
	}
	for _, s := range addresses {
		addr := common.HexToAddress(s)
		account := toAccount(addr)
		assert.Equal(t, addr.Hex(), account.Checksum(), s)
		assert.Equal(t, addr, common.HexToAddress(account.Checksum()))
	}
}
