// Package metrics exposes counters and histograms for catalog synchronization.
package metrics

import "time"

// Metrics is implemented by PrometheusMetrics and NopMetrics.
type Metrics interface {
	// Refresh metrics
	IncRefreshes(result string)
	ObserveRefreshLatency(latency time.Duration)
	SetCatalogSize(size int)
	SetEnrolledItems(count int)

	// Transaction metrics
	IncTransactions(operation string, outcome string)
	ObserveConfirmationLatency(operation string, latency time.Duration)
	IncLocalRejections(reason string)
}

// Outcome and result labels shared by callers.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultStale   = "stale"

	OutcomeConfirmed   = "confirmed"
	OutcomeFailed      = "failed"
	OutcomeRejected    = "rejected"
	OutcomeUnreachable = "unreachable"
	OutcomeTimeout     = "timeout"
	OutcomeAbandoned   = "abandoned"
)
