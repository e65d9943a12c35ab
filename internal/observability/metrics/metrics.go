// Package metrics exposes prometheus instruments for the HTTP layer and
// invoice ingestion. A dedicated registry is provided so tests can build
// isolated instances.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the application instruments.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	invoicesCreated *prometheus.CounterVec
	ocrRequests     *prometheus.CounterVec
}

func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "facturo_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "facturo_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		invoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "facturo_invoices_created_total",
			Help: "Invoices ingested, by status.",
		}, []string{"status"}),
		ocrRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "facturo_ocr_requests_total",
			Help: "OCR submissions by outcome.",
		}, []string{"outcome"}),
	}

	for _, collector := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.invoicesCreated,
		m.ocrRequests,
	} {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTP records one finished HTTP request. Route is the gin route
// template, not the raw path, to keep cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordInvoiceCreated increments the ingest counter.
func (m *Metrics) RecordInvoiceCreated(status string) {
	if m == nil {
		return
	}
	m.invoicesCreated.WithLabelValues(status).Inc()
}

// RecordOCRRequest increments the OCR submission counter.
func (m *Metrics) RecordOCRRequest(outcome string) {
	if m == nil {
		return
	}
	m.ocrRequests.WithLabelValues(outcome).Inc()
}
