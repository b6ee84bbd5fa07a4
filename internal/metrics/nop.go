package metrics

import (
	"time"
)

// NopMetrics is a no-op implementation of the Metrics interface.
// Use this when metrics collection is disabled.
type NopMetrics struct{}

// NewNopMetrics creates a new NopMetrics instance.
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

var _ Metrics = (*NopMetrics)(nil)

// Refresh metrics (no-op)

func (m *NopMetrics) IncRefreshes(result string)                  {}
func (m *NopMetrics) ObserveRefreshLatency(latency time.Duration) {}
func (m *NopMetrics) SetCatalogSize(size int)                     {}
func (m *NopMetrics) SetEnrolledItems(count int)                  {}

// Transaction metrics (no-op)

func (m *NopMetrics) IncTransactions(operation string, outcome string)                   {}
func (m *NopMetrics) ObserveConfirmationLatency(operation string, latency time.Duration) {}
func (m *NopMetrics) IncLocalRejections(reason string)                                   {}
