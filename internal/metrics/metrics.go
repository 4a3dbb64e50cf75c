package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Binding metrics
	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "core_invocations_total",
			Help: "Total number of core invocations by operation and outcome",
		},
		[]string{"operation", "status"},
	)
	InvocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "core_invocation_duration_seconds",
			Help: "Duration of core invocations in seconds",
		},
		[]string{"operation"},
	)

	// Upstream metrics
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream provider requests",
		},
		[]string{"provider", "status"},
	)
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "upstream_request_duration_seconds",
			Help: "Duration of upstream provider requests in seconds",
		},
		[]string{"provider"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "upstream_circuit_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)

	// Archive metrics
	ArchiveCapturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_captures_total",
			Help: "Total number of order-book captures by symbol and outcome",
		},
		[]string{"symbol", "status"},
	)
	ArchivePrunedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archive_pruned_snapshots_total",
			Help: "Total number of snapshots removed by retention",
		},
	)
)

var initOnce sync.Once

// InitMetrics registers every collector with the default registry
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(HTTPRequestsInFlight)

		prometheus.MustRegister(InvocationsTotal)
		prometheus.MustRegister(InvocationDuration)

		prometheus.MustRegister(UpstreamRequestsTotal)
		prometheus.MustRegister(UpstreamRequestDuration)
		prometheus.MustRegister(CircuitBreakerState)

		prometheus.MustRegister(ArchiveCapturesTotal)
		prometheus.MustRegister(ArchivePrunedTotal)
	})
}

// Status is the outcome label for an error
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
