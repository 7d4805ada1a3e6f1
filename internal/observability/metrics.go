package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	runsExecutedTotal  prometheus.Counter
	responsesPersisted *prometheus.CounterVec
	callsInFlight      prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arena_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		runsExecutedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_runs_executed_total",
			Help: "Total number of run executions completed.",
		})

		responsesPersisted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_responses_persisted_total",
			Help: "Response rows persisted during run execution, by outcome.",
		}, []string{"outcome"})

		callsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arena_provider_calls_in_flight",
			Help: "Provider calls currently awaiting resolution.",
		})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, runsExecutedTotal, responsesPersisted, callsInFlight)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// RunsExecuted exposes the counter for completed run executions.
func RunsExecuted() prometheus.Counter {
	RegisterMetrics()
	return runsExecutedTotal
}

// ResponsesPersisted exposes the counter for persisted response rows.
func ResponsesPersisted() *prometheus.CounterVec {
	RegisterMetrics()
	return responsesPersisted
}

// CallsInFlight exposes the gauge tracking unresolved provider calls.
func CallsInFlight() prometheus.Gauge {
	RegisterMetrics()
	return callsInFlight
}
