// Package metrics provides Prometheus collectors for the HTTP façade and the RAG pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Namespace is the metric namespace shared by all collectors.
const Namespace = "scholar_ai"

var defaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// NewRegistry creates a registry with the Go and process collectors registered.
func NewRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// HTTPMetrics holds request level collectors.
type HTTPMetrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	InflightRequests prometheus.Gauge
}

// NewHTTPMetrics registers the HTTP collectors on reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   defaultBuckets,
		}, []string{"route", "method", "status"}),
		InflightRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "http_inflight_requests",
			Help:      "Current number of inflight HTTP requests",
		}),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.InflightRequests)
	return m
}

// RAGMetrics holds business collectors for queries.
type RAGMetrics struct {
	QueryTotal    *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	RetrievedHits prometheus.Histogram
}

// Query outcomes.
const (
	OutcomeAnswered = "answered"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// NewRAGMetrics registers the RAG collectors on reg.
func NewRAGMetrics(reg prometheus.Registerer) *RAGMetrics {
	m := &RAGMetrics{
		QueryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rag_query_total",
			Help:      "Total RAG queries by mode and outcome",
		}, []string{"mode", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "rag_query_duration_seconds",
			Help:      "RAG query duration in seconds",
			Buckets:   defaultBuckets,
		}, []string{"mode", "outcome"}),
		RetrievedHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "rag_retrieved_hits",
			Help:      "Number of passages retrieved per query",
			Buckets:   prometheus.LinearBuckets(0, 2, 9),
		}),
	}
	reg.MustRegister(m.QueryTotal, m.QueryDuration, m.RetrievedHits)
	return m
}

// ObserveQuery records one query.
func (m *RAGMetrics) ObserveQuery(mode, outcome string, seconds float64, hits int) {
	if m == nil {
		return
	}
	m.QueryTotal.WithLabelValues(mode, outcome).Inc()
	m.QueryDuration.WithLabelValues(mode, outcome).Observe(seconds)
	if outcome == OutcomeAnswered || outcome == OutcomeNotFound {
		m.RetrievedHits.Observe(float64(hits))
	}
}
