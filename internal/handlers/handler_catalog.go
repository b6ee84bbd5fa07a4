package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	portssvc "github.com/SscSPs/catalog_sync_app/internal/core/ports/services"
	"github.com/SscSPs/catalog_sync_app/internal/dto"
	"github.com/SscSPs/catalog_sync_app/internal/middleware"
	"github.com/SscSPs/catalog_sync_app/internal/utils"
)

// catalogHandler handles HTTP requests against the local catalog mirror.
type catalogHandler struct {
	catalogService portssvc.CatalogSvcFacade
	posthogClient  *utils.PosthogClientWrapper
}

func newCatalogHandler(cs portssvc.CatalogSvcFacade, posthogClient *utils.PosthogClientWrapper) *catalogHandler {
	return &catalogHandler{
		catalogService: cs,
		posthogClient:  posthogClient,
	}
}

// RegisterCatalogRoutes registers routes related to the catalog. Mutations go
// through mutationMiddleware (rate limiting).
func RegisterCatalogRoutes(rg *gin.RouterGroup, catalogService portssvc.CatalogSvcFacade, posthogClient *utils.PosthogClientWrapper, mutationMiddleware ...gin.HandlerFunc) {
	h := newCatalogHandler(catalogService, posthogClient)

	catalog := rg.Group("/catalog")
	{
		catalog.GET("", h.getCatalog)
		catalog.GET("/enrollments", h.getEnrollments)
		catalog.GET("/creators/:account/items", h.listItemsByCreator)
		catalog.GET("/pending", h.getPending)

		mutations := catalog.Group("", mutationMiddleware...)
		mutations.POST("/refresh", h.refreshCatalog)
		mutations.POST("/items", h.createItem)
		mutations.POST("/items/:itemID/purchase", h.purchaseItem)
	}
}

// getCatalog godoc
// @Summary Get the catalog mirror
// @Description Returns the last published mirror without contacting the ledger
// @Tags catalog
// @Produce  json
// @Success 200 {object} dto.CatalogResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /catalog [get]
func (h *catalogHandler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToCatalogResponse(h.catalogService.Snapshot()))
}

// refreshCatalog godoc
// @Summary Refresh the catalog mirror
// @Description Reloads items and enrollments from the ledger and publishes them atomically
// @Tags catalog
// @Produce  json
// @Success 200 {object} dto.CatalogResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Ledger unreachable"
// @Failure 504 {object} map[string]string "Ledger did not answer in time"
// @Security BearerAuth
// @Router /catalog/refresh [post]
func (h *catalogHandler) refreshCatalog(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	snap, err := h.catalogService.Refresh(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to refresh catalog")
		return
	}
	c.JSON(http.StatusOK, dto.ToCatalogResponse(snap))
}

// getEnrollments godoc
// @Summary List enrollments of the active account
// @Description Returns the item ids the active account holds, per the last refresh
// @Tags catalog
// @Produce  json
// @Success 200 {object} dto.EnrollmentsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /catalog/enrollments [get]
func (h *catalogHandler) getEnrollments(c *gin.Context) {
	snap := h.catalogService.Snapshot()
	ids := make([]uint64, 0, len(snap.Enrollments))
	for _, rec := range snap.Enrollments {
		ids = append(ids, rec.ItemID)
	}
	c.JSON(http.StatusOK, dto.EnrollmentsResponse{
		Account: h.catalogService.ActiveAccount().Checksum(),
		ItemIDs: ids,
	})
}

// getPending godoc
// @Summary Get the open transaction of the active account
// @Tags catalog
// @Produce  json
// @Success 200 {object} dto.PendingTransactionResponse
// @Success 204 "No open transaction"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /catalog/pending [get]
func (h *catalogHandler) getPending(c *gin.Context) {
	pending, ok := h.catalogService.PendingTransaction()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.ToPendingTransactionResponse(pending))
}

// listItemsByCreator godoc
// @Summary List items by creator
// @Description Filters the mirror by creator account
// @Tags catalog
// @Produce  json
// @Param   account path string true "Creator account address"
// @Success 200 {array} dto.CatalogItemResponse
// @Failure 400 {object} map[string]string "Invalid account"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /catalog/creators/{account}/items [get]
func (h *catalogHandler) listItemsByCreator(c *gin.Context) {
	creator := domain.Account(c.Param("account"))
	if !creator.IsHexAddress() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account address"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListCatalogItemResponse(h.catalogService.ItemsByCreator(creator)))
}

// createItem godoc
// @Summary Create a catalog item
// @Description Submits a create transaction and returns once the mirror reflects it
// @Tags catalog
// @Accept  json
// @Produce  json
// @Param   item body dto.CreateItemRequest true "Item details"
// @Success 201 {object} dto.TxOutcomeResponse
// @Failure 400 {object} map[string]string "Invalid input or amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A transaction is already pending"
// @Failure 422 {object} map[string]string "Rejected by ledger"
// @Failure 502 {object} map[string]string "Ledger unreachable"
// @Failure 504 {object} map[string]string "Timed out waiting for confirmation"
// @Security BearerAuth
// @Router /catalog/items [post]
func (h *catalogHandler) createItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to create catalog item", slog.String("title", req.Title), slog.String("price", req.Price))

	out, err := h.catalogService.Create(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create catalog item")
		return
	}

	middleware.PosthogEvent(c, h.posthogClient, "catalog_item_created", map[string]any{"tx_id": out.Handle.ID})
	c.JSON(http.StatusCreated, dto.ToTxOutcomeResponse(out))
}

// purchaseItem godoc
// @Summary Purchase a catalog item
// @Description Submits a purchase transaction and returns once the mirror reflects it. An empty price uses the listed price.
// @Tags catalog
// @Accept  json
// @Produce  json
// @Param   itemID path int true "Item ID"
// @Param   purchase body dto.PurchaseItemRequest false "Offered price"
// @Success 200 {object} dto.TxOutcomeResponse
// @Failure 400 {object} map[string]string "Invalid item id or amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Item not in the mirror"
// @Failure 409 {object} map[string]string "Already enrolled or a transaction is pending"
// @Failure 422 {object} map[string]string "Rejected by ledger"
// @Failure 502 {object} map[string]string "Ledger unreachable"
// @Failure 504 {object} map[string]string "Timed out waiting for confirmation"
// @Security BearerAuth
// @Router /catalog/items/{itemID}/purchase [post]
func (h *catalogHandler) purchaseItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	itemID, err := strconv.ParseUint(c.Param("itemID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req dto.PurchaseItemRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for PurchaseItem", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	logger = logger.With(slog.Uint64("item_id", itemID))
	logger.Info("Received request to purchase catalog item", slog.String("price", req.Price))

	out, err := h.catalogService.Purchase(c.Request.Context(), itemID, req.Price)
	if err != nil {
		respondWithError(c, logger, err, "Failed to purchase catalog item")
		return
	}

	middleware.PosthogEvent(c, h.posthogClient, "catalog_item_purchased", map[string]any{"item_id": itemID, "tx_id": out.Handle.ID})
	c.JSON(http.StatusOK, dto.ToTxOutcomeResponse(out))
}

// respondWithError maps catalog errors to HTTP statuses.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyEnrolled),
		errors.Is(err, apperrors.ErrAlreadyPending),
		errors.Is(err, apperrors.ErrStaleAccount):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrRejectedByLedger):
		status = http.StatusUnprocessableEntity
		if reason, ok := apperrors.RejectionReason(err); ok {
			body["reason"] = reason
		}
	case errors.Is(err, apperrors.ErrUnreachableLedger):
		status = http.StatusBadGateway
	case errors.Is(err, apperrors.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	default:
		body["error"] = msg
	}

	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()), slog.Int("status", status))
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, body)
}
