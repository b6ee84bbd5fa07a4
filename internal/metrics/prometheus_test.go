package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_Counters(t *testing.T) {
	m := NewPrometheusMetrics("catalog_test")

	m.IncRefreshes(ResultSuccess)
	m.IncRefreshes(ResultSuccess)
	m.IncRefreshes(ResultError)
	m.IncTransactions("PURCHASE", OutcomeConfirmed)
	m.IncLocalRejections("already_enrolled")
	m.SetCatalogSize(3)
	m.ObserveRefreshLatency(20 * time.Millisecond)
	m.ObserveConfirmationLatency("PURCHASE", time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.refreshes.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.refreshes.WithLabelValues(ResultError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transactions.WithLabelValues("PURCHASE", OutcomeConfirmed)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.catalogSize))
}

func TestPrometheusMetrics_Handler(t *testing.T) {
	m := NewPrometheusMetrics("catalog_test")
	m.SetEnrolledItems(2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "catalog_test_catalog_enrolled_items 2"))
}
