// Package metrics provides Prometheus metrics for token refresh operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains token lifecycle metrics.
type Metrics struct {
	RefreshesTotal         *prometheus.CounterVec
	FastPathTotal          prometheus.Counter
	RefreshDurationSeconds prometheus.Histogram
	DedupedRefreshesTotal  prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		RefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fitrelay_token_refreshes_total",
			Help: "Total number of refresh exchanges by result",
		}, []string{"result"}),

		FastPathTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fitrelay_token_fastpath_total",
			Help: "Total number of token requests served without an exchange",
		}),

		RefreshDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fitrelay_token_refresh_duration_seconds",
			Help:    "Duration of refresh exchanges against the upstream",
			Buckets: prometheus.DefBuckets,
		}),

		DedupedRefreshesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fitrelay_token_deduped_refreshes_total",
			Help: "Total number of refresh requests coalesced into an in-flight exchange",
		}),
	}
}

// RecordRefresh records one refresh exchange outcome.
func (m *Metrics) RecordRefresh(result string, durationSeconds float64) {
	m.RefreshesTotal.WithLabelValues(result).Inc()
	m.RefreshDurationSeconds.Observe(durationSeconds)
}

// RecordFastPath records a token request answered from the stored record.
func (m *Metrics) RecordFastPath() {
	m.FastPathTotal.Inc()
}

// RecordDeduped records a refresh request that joined an in-flight exchange.
func (m *Metrics) RecordDeduped() {
	m.DedupedRefreshesTotal.Inc()
}
