package mapping

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	"github.com/SscSPs/catalog_sync_app/internal/models"
)

// ToModelCatalogItem converts a domain item to its persisted row.
func ToModelCatalogItem(deployment string, d domain.CatalogItem) models.CatalogItem {
	price := "0"
	if d.PriceMinorUnits != nil {
		price = d.PriceMinorUnits.String()
	}
	participants := make([]string, len(d.Participants))
	for i, p := range d.Participants {
		participants[i] = p.String()
	}
	return models.CatalogItem{
		Deployment:   deployment,
		ItemID:       int64(d.ID),
		Title:        d.Title,
		Description:  d.Description,
		ImageURL:     d.ImageURL,
		Price:        price,
		Creator:      d.Creator.String(),
		Participants: participants,
	}
}

// ToDomainCatalogItem converts a persisted row back to a domain item.
func ToDomainCatalogItem(m models.CatalogItem) (domain.CatalogItem, error) {
	price, ok := new(big.Int).SetString(m.Price, 10)
	if !ok {
		return domain.CatalogItem{}, fmt.Errorf("item %d has malformed price %q", m.ItemID, m.Price)
	}
	participants := make([]domain.Account, len(m.Participants))
	for i, p := range m.Participants {
		participants[i] = domain.Account(p)
	}
	return domain.CatalogItem{
		ID:              uint64(m.ItemID),
		Title:           m.Title,
		Description:     m.Description,
		ImageURL:        m.ImageURL,
		PriceMinorUnits: price,
		Creator:         domain.Account(m.Creator),
		Participants:    participants,
	}, nil
}

// ToModelPendingTransaction converts an open mutation to its marker row.
func ToModelPendingTransaction(deployment string, d domain.PendingTransaction) (models.PendingTransaction, error) {
	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return models.PendingTransaction{}, fmt.Errorf("failed to encode payload of %s: %w", d.ID, err)
	}
	return models.PendingTransaction{
		PendingID:   d.ID,
		Deployment:  deployment,
		Account:     d.Account.String(),
		Operation:   string(d.Operation),
		State:       string(d.State),
		LedgerTxID:  d.LedgerTxID,
		Payload:     payload,
		SubmittedAt: d.SubmittedAt,
	}, nil
}

// ToDomainPendingTransaction converts a marker row back. The payload stays raw JSON.
func ToDomainPendingTransaction(m models.PendingTransaction) domain.PendingTransaction {
	return domain.PendingTransaction{
		ID:          m.PendingID,
		Account:     domain.Account(m.Account),
		Operation:   domain.Operation(m.Operation),
		Payload:     json.RawMessage(m.Payload),
		State:       domain.TxState(m.State),
		LedgerTxID:  m.LedgerTxID,
		SubmittedAt: m.SubmittedAt,
	}
}
