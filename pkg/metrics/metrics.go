// Package metrics defines the Prometheus metric collectors used by the
// retrieval services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	QueriesScoredTotal   prometheus.Counter
	ScoringLatency       prometheus.Histogram
	ResultsPerQuery      prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	DocumentsCatalogued  prometheus.Gauge
	IndexTerms           prometheus.Gauge
	ContextState         prometheus.Gauge
	SinkWritesTotal      *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them with reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		QueriesScoredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "retrieval_queries_scored_total",
				Help: "Total queries scored.",
			},
		),
		ScoringLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retrieval_scoring_latency_seconds",
				Help:    "Time to score one query in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		ResultsPerQuery: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "retrieval_results_per_query",
				Help:    "Number of ranked documents returned per query.",
				Buckets: []float64{0, 1, 10, 100, 1000, 10000},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses.",
			},
		),
		DocumentsCatalogued: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "retrieval_documents_catalogued",
				Help: "Number of documents in the loaded catalog.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "retrieval_index_terms",
				Help: "Number of distinct terms in the loaded index.",
			},
		),
		ContextState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "retrieval_context_state",
				Help: "Retrieval context state (0=uninitialized, 1=loading, 2=ready).",
			},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retrieval_sink_writes_total",
				Help: "Result sink writes by sink and status.",
			},
			[]string{"sink", "status"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.QueriesScoredTotal,
		m.ScoringLatency,
		m.ResultsPerQuery,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocumentsCatalogued,
		m.IndexTerms,
		m.ContextState,
		m.SinkWritesTotal,
	)

	return m
}

// ObserveQuery records one scored query.
func (m *Metrics) ObserveQuery(results int, took time.Duration) {
	m.QueriesScoredTotal.Inc()
	m.ScoringLatency.Observe(took.Seconds())
	m.ResultsPerQuery.Observe(float64(results))
}

// ObserveSink records the outcome of one sink write.
func (m *Metrics) ObserveSink(sink string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SinkWritesTotal.WithLabelValues(sink, status).Inc()
}

// Handler returns the Prometheus scrape HTTP handler for m's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
