// Package observability provides Prometheus metrics, a dispatch
// middleware, and a backend instrumentation decorator for the gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts dispatched requests by route and outcome. The
	// status label is "ok" or the API error type of the failure.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total dispatched requests",
		},
		[]string{"route", "status"},
	)

	// RequestDuration records dispatch duration in seconds by route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"route"},
	)

	// BackendRequestsTotal counts calls sent to the generation backend.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_backend_requests_total",
			Help: "Backend invocations",
		},
		[]string{"backend", "operation", "status"},
	)

	// BackendLatency records backend invocation latency in seconds. For
	// streaming calls this covers stream setup, not the full stream.
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_backend_latency_seconds",
			Help:    "Backend latency",
			Buckets: LLMBuckets,
		},
		[]string{"backend", "operation"},
	)

	// BackendTokensTotal counts tokens exchanged with the backend by
	// direction (input/output), using the gateway's whitespace token count.
	BackendTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_backend_tokens_total",
			Help: "Token count",
		},
		[]string{"backend", "direction"},
	)

	// StreamsActive tracks the number of open backend streams.
	StreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_streams_active",
			Help: "Active backend streams",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		BackendRequestsTotal,
		BackendLatency,
		BackendTokensTotal,
		StreamsActive,
	)
}
