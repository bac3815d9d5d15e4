// Package metrics defines the Prometheus metric collectors used by the
// analyzer service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	DocumentsAnalyzed    *prometheus.CounterVec
	AnalysisDuration     prometheus.Histogram
	TokensPerDocument    prometheus.Histogram
	TermsReturned        prometheus.Histogram
	CorpusDocuments      prometheus.Gauge
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
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
		DocumentsAnalyzed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_analyzed_total",
				Help: "Total documents analyzed by outcome (completed, failed, empty).",
			},
			[]string{"status"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analysis_duration_seconds",
				Help:    "TF-IDF analysis latency in seconds, upload to ranked result.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		TokensPerDocument: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tokens_per_document",
				Help:    "Number of filtered tokens per analyzed document.",
				Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
		),
		TermsReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "terms_returned",
				Help:    "Number of ranked terms returned per analysis.",
				Buckets: []float64{0, 1, 5, 10, 25, 50},
			},
		),
		CorpusDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "corpus_documents",
				Help: "Number of documents currently counted in the corpus.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of statistics cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of statistics cache misses.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DocumentsAnalyzed,
		m.AnalysisDuration,
		m.TokensPerDocument,
		m.TermsReturned,
		m.CorpusDocuments,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
