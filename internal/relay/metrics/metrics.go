// Package metrics provides Prometheus instrumentation for the relay service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for relay operations.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
}

// New creates relay metrics registered on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fitrelay_relay_requests_total",
			Help: "Relay requests by method and cache status.",
		}, []string{"method", "cache_status"}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fitrelay_relay_errors_total",
			Help: "Relay requests that failed, by domain error code.",
		}, []string{"code"}),
		UpstreamDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fitrelay_relay_upstream_duration_seconds",
			Help:    "Latency of live upstream calls made by the relay.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// RecordRequest counts a completed relay request.
func (m *Metrics) RecordRequest(method, cacheStatus string) {
	m.RequestsTotal.WithLabelValues(method, cacheStatus).Inc()
}

// RecordError counts a failed relay request by error code.
func (m *Metrics) RecordError(code string) {
	m.ErrorsTotal.WithLabelValues(code).Inc()
}

// ObserveUpstream records the duration of a live upstream call.
func (m *Metrics) ObserveUpstream(method string, seconds float64) {
	m.UpstreamDuration.WithLabelValues(method).Observe(seconds)
}
