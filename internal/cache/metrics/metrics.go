// Package metrics provides Prometheus metrics for the response cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains cache operation metrics, labeled by cache scope.
type Metrics struct {
	HitsTotal          *prometheus.CounterVec
	MissesTotal        *prometheus.CounterVec
	StaleServedAsMiss  *prometheus.CounterVec
	WritesTotal        *prometheus.CounterVec
	InvalidationsTotal prometheus.Counter

	LookupDurationSeconds *prometheus.HistogramVec
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		HitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fitrelay_cache_hits_total",
			Help: "Total number of cache hits by scope",
		}, []string{"scope"}),

		MissesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fitrelay_cache_misses_total",
			Help: "Total number of cache misses by scope",
		}, []string{"scope"}),

		StaleServedAsMiss: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fitrelay_cache_stale_total",
			Help: "Total number of lookups that found an entry past its expiry",
		}, []string{"scope"}),

		WritesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fitrelay_cache_writes_total",
			Help: "Total number of cache entry upserts by scope",
		}, []string{"scope"}),

		InvalidationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fitrelay_cache_invalidations_total",
			Help: "Total number of explicit cache invalidations",
		}),

		LookupDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fitrelay_cache_lookup_duration_seconds",
			Help:    "Duration of cache lookup operations by scope",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
		}, []string{"scope"}),
	}
}

// RecordHit records a cache hit for the given scope.
func (m *Metrics) RecordHit(scope string) {
	m.HitsTotal.WithLabelValues(scope).Inc()
}

// RecordMiss records a cache miss for the given scope.
func (m *Metrics) RecordMiss(scope string) {
	m.MissesTotal.WithLabelValues(scope).Inc()
}

// RecordStale records a lookup that found only a stale entry.
func (m *Metrics) RecordStale(scope string) {
	m.StaleServedAsMiss.WithLabelValues(scope).Inc()
}

// RecordWrite records a cache entry upsert.
func (m *Metrics) RecordWrite(scope string) {
	m.WritesTotal.WithLabelValues(scope).Inc()
}

// RecordInvalidation records an explicit invalidation.
func (m *Metrics) RecordInvalidation() {
	m.InvalidationsTotal.Inc()
}

// ObserveLookupDuration records the duration of a cache lookup.
func (m *Metrics) ObserveLookupDuration(scope string, durationSeconds float64) {
	m.LookupDurationSeconds.WithLabelValues(scope).Observe(durationSeconds)
}
