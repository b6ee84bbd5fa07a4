package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/catalog_sync_app/internal/core/ports/services"
)

// getHome godoc
// @Summary Show the status of server.
// @Description get the status of server.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func getHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Catalog Sync API v1"})
}

// healthHandler reports liveness and whether a mirror has been published.
type healthHandler struct {
	catalog portssvc.CatalogReaderSvc
}

// getHealth godoc
// @Summary Health check
// @Description Always 200 while the process serves requests; reports the last published mirror.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *healthHandler) getHealth(c *gin.Context) {
	snap := h.catalog.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":   "OK",
		"sequence": snap.Sequence,
		"syncedAt": snap.SyncedAt,
		"items":    len(snap.Items),
	})
}
