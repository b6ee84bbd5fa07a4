package domain_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestTxState_IsTerminal(t *testing.T) {
	tests := []struct {
		state domain.TxState
		want  bool
	}{
		{domain.TxIdle, false},
		{domain.TxSubmitting, false},
		{domain.TxPending, false},
		{domain.TxConfirmed, true},
		{domain.TxFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.IsTerminal())
		})
	}
}

func TestAccount_Equal(t *testing.T) {
	a := domain.Account("0xDCC83B7F99AB531C0C1B7B9AFF34FD953F9BDC83")
	b := domain.Account(" 0xdcc83b7f99ab531c0c1b7b9aff34fd953f9bdc83 ")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal("0x49fedd3f224aa487400c41b0d3d6e0a6f1029848"))
	assert.True(t, domain.Account("  ").IsZero())
}

func TestAccount_Checksum(t *testing.T) {
	// Reference vectors from EIP-55
	tests := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}

	for _, want := range tests {
		t.Run(want, func(t *testing.T) {
			lower := domain.Account(want).Normalize()
			assert.Equal(t, want, lower.Checksum())
		})
	}

	assert.Equal(t, "alice", domain.Account("alice").Checksum())
}

func TestCatalogSnapshot_CopiesItems(t *testing.T) {
	price := big.NewInt(100)
	items := []domain.CatalogItem{{
		ID:              0,
		Title:           "Intro",
		PriceMinorUnits: price,
		Participants:    []domain.Account{"0xabc"},
	}}

	snap := domain.NewCatalogSnapshot(items, nil, 1, "0xabc", time.Now())
	price.SetInt64(5)
	items[0].Participants[0] = "0xdef"

	item, ok := snap.Item(0)
	assert.True(t, ok)
	assert.Equal(t, int64(100), item.PriceMinorUnits.Int64())
	assert.Equal(t, domain.Account("0xabc"), item.Participants[0])
	assert.True(t, item.HasParticipant("0xABC"))

	_, ok = snap.Item(1)
	assert.False(t, ok)
}

func TestCatalogItem_PriceDecimal(t *testing.T) {
	item := domain.CatalogItem{PriceMinorUnits: big.NewInt(100000000000000000)}
	assert.Equal(t, "0.1", item.PriceDecimal())
}
