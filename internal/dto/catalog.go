package dto

import (
	"time"

	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
)

// CreateItemRequest defines the data needed to list a new catalog item.
type CreateItemRequest struct {
	Title       string `json:"title" binding:"required" validate:"required,max=256"`
	Description string `json:"description" binding:"required" validate:"required,max=4096"`
	ImageURL    string `json:"imageURL" validate:"omitempty,url"`
	Price       string `json:"price" binding:"required"` // Decimal string, e.g. "0.1"
}

// PurchaseItemRequest defines the optional body of a purchase call.
type PurchaseItemRequest struct {
	Price string `json:"price"` // Empty uses the listed price
}

// CatalogItemResponse defines the data returned for a catalog item.
type CatalogItemResponse struct {
	ID               uint64   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ImageURL         string   `json:"imageURL,omitempty"`
	Price            string   `json:"price"`           // Decimal form
	PriceMinorUnits  string   `json:"priceMinorUnits"` // Integer form, as on the wire
	Creator          string   `json:"creator"`
	Participants     []string `json:"participants"`
	ParticipantCount int      `json:"participantCount"`
	Enrolled         bool     `json:"enrolled"` // True when the active account holds the item
}

// CatalogResponse defines the published mirror returned to clients.
type CatalogResponse struct {
	Items         []CatalogItemResponse `json:"items"`
	EnrolledIDs   []uint64              `json:"enrolledIDs"`
	ActiveAccount string                `json:"activeAccount"`
	Sequence      uint64                `json:"sequence"`
	SyncedAt      time.Time             `json:"syncedAt"`
}

// EnrollmentsResponse lists the item ids held by the active account.
type EnrollmentsResponse struct {
	Account string   `json:"account"`
	ItemIDs []uint64 `json:"itemIDs"`
}

// TxOutcomeResponse defines the data returned after a confirmed mutation.
type TxOutcomeResponse struct {
	TransactionID string          `json:"transactionID"`
	Operation     string          `json:"operation"`
	State         string          `json:"state"`
	Account       string          `json:"account"`
	SubmittedAt   time.Time       `json:"submittedAt"`
	BlockNumber   uint64          `json:"blockNumber,omitempty"`
	Catalog       CatalogResponse `json:"catalog"`
}

// ToCatalogItemResponse converts a domain.CatalogItem to its DTO.
func ToCatalogItemResponse(item domain.CatalogItem, enrolled bool) CatalogItemResponse {
	participants := make([]string, len(item.Participants))
	for i, p := range item.Participants {
		participants[i] = p.Checksum()
	}
	minor := "0"
	if item.PriceMinorUnits != nil {
		minor = item.PriceMinorUnits.String()
	}
	return CatalogItemResponse{
		ID:               item.ID,
		Title:            item.Title,
		Description:      item.Description,
		ImageURL:         item.ImageURL,
		Price:            item.PriceDecimal(),
		PriceMinorUnits:  minor,
		Creator:          item.Creator.Checksum(),
		Participants:     participants,
		ParticipantCount: len(participants),
		Enrolled:         enrolled,
	}
}

// ToCatalogResponse converts a snapshot to the client view.
func ToCatalogResponse(snap *domain.CatalogSnapshot) CatalogResponse {
	if snap == nil {
		return CatalogResponse{Items: []CatalogItemResponse{}, EnrolledIDs: []uint64{}}
	}
	enrolled := make(map[uint64]bool, len(snap.Enrollments))
	ids := make([]uint64, 0, len(snap.Enrollments))
	for _, rec := range snap.Enrollments {
		enrolled[rec.ItemID] = true
		ids = append(ids, rec.ItemID)
	}
	items := make([]CatalogItemResponse, len(snap.Items))
	for i, item := range snap.Items {
		items[i] = ToCatalogItemResponse(item, enrolled[item.ID])
	}
	return CatalogResponse{
		Items:         items,
		EnrolledIDs:   ids,
		ActiveAccount: snap.SyncedFor.Checksum(),
		Sequence:      snap.Sequence,
		SyncedAt:      snap.SyncedAt,
	}
}

// ToListCatalogItemResponse converts a slice of items without enrollment flags.
func ToListCatalogItemResponse(items []domain.CatalogItem) []CatalogItemResponse {
	res := make([]CatalogItemResponse, len(items))
	for i, item := range items {
		res[i] = ToCatalogItemResponse(item, false)
	}
	return res
}

// ToTxOutcomeResponse converts a domain.TxOutcome to its DTO.
func ToTxOutcomeResponse(out *domain.TxOutcome) TxOutcomeResponse {
	return TxOutcomeResponse{
		TransactionID: out.Handle.ID,
		Operation:     string(out.Handle.Operation),
		State:         string(out.State),
		Account:       out.Handle.Account.Checksum(),
		SubmittedAt:   out.Handle.SubmittedAt,
		BlockNumber:   out.Confirmation.BlockNumber,
		Catalog:       ToCatalogResponse(out.Snapshot),
	}
}

// PendingTransactionResponse describes the open mutation of the active account.
type PendingTransactionResponse struct {
	ID            string    `json:"id"`
	Account       string    `json:"account"`
	Operation     string    `json:"operation"`
	State         string    `json:"state"`
	TransactionID string    `json:"transactionID,omitempty"` // Empty until the ledger accepts the submission
	SubmittedAt   time.Time `json:"submittedAt"`
}

// ToPendingTransactionResponse converts a domain.PendingTransaction to its DTO.
func ToPendingTransactionResponse(p *domain.PendingTransaction) PendingTransactionResponse {
	return PendingTransactionResponse{
		ID:            p.ID,
		Account:       p.Account.Checksum(),
		Operation:     string(p.Operation),
		State:         string(p.State),
		TransactionID: p.LedgerTxID,
		SubmittedAt:   p.SubmittedAt,
	}
}
