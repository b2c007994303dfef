// Package metrics exposes Prometheus metrics for the screening service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "resume_screener"
	subsystem = "screening"
)

// Manager owns the collectors registered on a single registry.
type Manager struct {
	registry *prometheus.Registry

	analyses           *prometheus.CounterVec
	scores             prometheus.Histogram
	analysisLatency    prometheus.Histogram
	documents          *prometheus.CounterVec
	extractionFailures prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry registers the collectors on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		m.registry = r
	}
}

// NewManager creates and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)

	m.analyses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "analyses_total",
		Help:      "Total number of completed analyses by decision",
	}, []string{"decision"})

	m.scores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "score",
		Help:      "Distribution of match scores",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	})

	m.analysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "analysis_duration_milliseconds",
		Help:      "Time spent in a single analysis",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	m.documents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "documents_extracted_total",
		Help:      "Total number of uploaded documents converted to text by type",
	}, []string{"type"})

	m.extractionFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "extraction_failures_total",
		Help:      "Total number of resumes that produced no usable text",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status_code"})

	return m
}

// Registry returns the registry holding the collectors.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordAnalysis records the outcome and latency of one analysis.
func (m *Manager) RecordAnalysis(decision string, score int, took time.Duration) {
	m.analyses.WithLabelValues(decision).Inc()
	m.scores.Observe(float64(score))
	m.analysisLatency.Observe(float64(took.Microseconds()) / 1000)
}

// RecordDocument counts a document converted to text.
func (m *Manager) RecordDocument(mimeType string) {
	m.documents.WithLabelValues(mimeType).Inc()
}

// RecordExtractionFailure counts a resume without usable text.
func (m *Manager) RecordExtractionFailure() {
	m.extractionFailures.Inc()
}

// RecordHTTPRequest records a served request.
func (m *Manager) RecordHTTPRequest(endpoint, method string, status int, took time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(float64(took.Milliseconds()))
}
