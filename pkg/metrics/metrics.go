// Package metrics exposes the console's Prometheus metrics.
//
// Four groups are tracked:
//
//   - console HTTP traffic (requests, latency, in-flight)
//   - calls to the library API (per endpoint and status)
//   - list fetch cycles (issued, applied, failed, dropped as stale)
//   - resilience helpers (circuit breaker state, saga runs, audit publishing)
//
// InitMetrics registers everything on the default registry once. The helper
// functions tolerate nil collectors so packages can record metrics in tests
// that never call InitMetrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Console HTTP

	// HTTPRequestsTotal labels: method, path, status
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration labels: method, path
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	// Library API

	// APIRequestsTotal labels: method, endpoint, status (HTTP status or "error")
	APIRequestsTotal *prometheus.CounterVec
	// APIRequestDuration labels: method, endpoint
	APIRequestDuration *prometheus.HistogramVec
	// APIRetriesTotal labels: endpoint
	APIRetriesTotal *prometheus.CounterVec

	// List screens

	// ListFetchesTotal labels: screen, result (applied/failed/stale)
	ListFetchesTotal *prometheus.CounterVec
	// ListFetchDuration labels: screen
	ListFetchDuration *prometheus.HistogramVec
	// MutationsTotal labels: screen, op (create/update/delete/link/unlink/reconcile), result (success/failure)
	MutationsTotal *prometheus.CounterVec
	// ActiveWorkspaces is the number of signed-in sessions holding screens.
	ActiveWorkspaces prometheus.Gauge

	// Resilience

	// CircuitBreakerState labels: name. 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec
	// CircuitBreakerRequests labels: name, result (success/failure/rejected)
	CircuitBreakerRequests *prometheus.CounterVec
	// SagaExecutionsTotal labels: name, result (succeeded/failed)
	SagaExecutionsTotal    *prometheus.CounterVec
	SagaCompensationsTotal prometheus.Counter
	// MessagesPublishedTotal labels: exchange, routing_key
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics registers all collectors. Safe to call more than once.
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libadmin_http_requests_total",
			Help: "Console HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "libadmin_http_request_duration_seconds",
			Help:    "Console HTTP request latency.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "libadmin_http_requests_in_progress",
			Help: "Console HTTP requests being served.",
		},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libadmin_api_requests_total",
			Help: "Calls made to the library API.",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "libadmin_api_request_duration_seconds",
			Help:    "Library API call latency.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libadmin_api_retries_total",
			Help: "Retried library API calls.",
		},
		[]string{"endpoint"},
	)

	ListFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libadmin_list_fetches_total",
			Help: "List screen fetches by outcome.",
		},
		[]string{"screen", "result"},
	)

	ListFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "libadmin_list_fetch_duration_seconds",
			Help:    "Time from issuing a list fetch to its resolution.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"screen"},
	)

	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libadmin_mutations_total",
			Help: "Create, update and delete operations by outcome.",
		},
		[]string{"screen", "op", "result"},
	)

	ActiveWorkspaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "libadmin_active_workspaces",
			Help: "Signed-in sessions with open screens.",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "libadmin_circuit_breaker_state",
			Help: "Circuit breaker state (0=CLOSED, 1=OPEN, 2=HALF_OPEN).",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libadmin_circuit_breaker_requests_total",
			Help: "Requests seen by circuit breakers.",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libadmin_saga_executions_total",
			Help: "Saga runs by outcome.",
		},
		[]string{"name", "result"},
	)

	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "libadmin_saga_compensations_total",
			Help: "Compensation steps executed.",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libadmin_messages_published_total",
			Help: "Audit messages published.",
		},
		[]string{"exchange", "routing_key"},
	)
}

func IncCounter(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}

func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}
