package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements the Metrics interface using Prometheus.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// Refresh metrics
	refreshes      *prometheus.CounterVec
	refreshLatency prometheus.Histogram
	catalogSize    prometheus.Gauge
	enrolledItems  prometheus.Gauge

	// Transaction metrics
	transactions        *prometheus.CounterVec
	confirmationLatency *prometheus.HistogramVec
	localRejections     *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	m := &PrometheusMetrics{
		registry: registry,

		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_refreshes_total",
				Help:      "Total number of catalog refreshes by result",
			},
			[]string{"result"},
		),
		refreshLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_refresh_duration_seconds",
				Help:      "Time taken to fetch and publish the catalog mirror",
				Buckets:   prometheus.DefBuckets,
			},
		),
		catalogSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_items",
				Help:      "Number of items in the published mirror",
			},
		),
		enrolledItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_enrolled_items",
				Help:      "Number of items held by the active account",
			},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_transactions_total",
				Help:      "Total number of submitted mutations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		confirmationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_confirmation_duration_seconds",
				Help:      "Time between submission and confirmation",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),
		localRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_local_rejections_total",
				Help:      "Mutations short-circuited before reaching the ledger",
			},
			[]string{"reason"},
		),
	}

	m.registerMetrics()
	return m
}

var _ Metrics = (*PrometheusMetrics)(nil)

func (m *PrometheusMetrics) registerMetrics() {
	m.registry.MustRegister(
		m.refreshes,
		m.refreshLatency,
		m.catalogSize,
		m.enrolledItems,
		m.transactions,
		m.confirmationLatency,
		m.localRejections,
	)
}

// Handler returns an HTTP handler serving the registry.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Refresh metrics

func (m *PrometheusMetrics) IncRefreshes(result string) {
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) ObserveRefreshLatency(latency time.Duration) {
	m.refreshLatency.Observe(latency.Seconds())
}

func (m *PrometheusMetrics) SetCatalogSize(size int) {
	m.catalogSize.Set(float64(size))
}

func (m *PrometheusMetrics) SetEnrolledItems(count int) {
	m.enrolledItems.Set(float64(count))
}

// Transaction metrics

func (m *PrometheusMetrics) IncTransactions(operation string, outcome string) {
	m.transactions.WithLabelValues(operation, outcome).Inc()
}

func (m *PrometheusMetrics) ObserveConfirmationLatency(operation string, latency time.Duration) {
	m.confirmationLatency.WithLabelValues(operation).Observe(latency.Seconds())
}

func (m *PrometheusMetrics) IncLocalRejections(reason string) {
	m.localRejections.WithLabelValues(reason).Inc()
}
