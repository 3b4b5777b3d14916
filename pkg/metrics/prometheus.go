// Package metrics provides Prometheus metrics for the vigil surveillance service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the vigil service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Fetch Metrics - upstream feed health
	fetchTotal   *prometheus.CounterVec
	fetchRecords *prometheus.CounterVec
	rowsSkipped  *prometheus.CounterVec

	// Ingestion Metrics - merge pass outcomes
	passTotal         *prometheus.CounterVec
	passDuration      prometheus.Histogram
	passLastUnix      prometheus.Gauge
	rowsInserted      *prometheus.CounterVec
	rowsDuplicate     *prometheus.CounterVec
	securitiesCreated prometheus.Counter
	sentinelDates     prometheus.Counter

	// Risk Metrics - classification outcomes
	riskAssessments *prometheus.CounterVec

	// Store Metrics - table sizes
	securitiesTotal    prometheus.Gauge
	attentionTotal     prometheus.Gauge
	dispositionsTotal  prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vigil",
		subsystem:        "surveillance",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.fetchTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_total",
			Help:      "Total number of upstream fetch attempts by feed and outcome",
		},
		[]string{"feed", "outcome"},
	)

	m.fetchRecords = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_records_total",
			Help:      "Total number of raw records returned by upstream feeds",
		},
		[]string{"feed"},
	)

	m.rowsSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_rows_skipped_total",
			Help:      "Total number of upstream rows skipped by feed and reason",
		},
		[]string{"feed", "reason"},
	)

	m.passTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ingest_passes_total",
			Help:      "Total number of ingestion passes by outcome (completed, failed, skipped)",
		},
		[]string{"outcome"},
	)

	m.passDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_pass_duration_seconds",
		Help:      "Histogram of full ingestion pass duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.passLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_pass_last_completed_unix",
		Help:      "Unix timestamp of the last completed ingestion pass",
	})

	m.rowsInserted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ingest_rows_inserted_total",
			Help:      "Total number of new rows merged into the event logs by log name",
		},
		[]string{"log"},
	)

	m.rowsDuplicate = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ingest_rows_duplicate_total",
			Help:      "Total number of rows dropped by the idempotency check by log name",
		},
		[]string{"log"},
	)

	m.securitiesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "securities_created_total",
		Help:      "Total number of securities registered on first sighting",
	})

	m.sentinelDates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sentinel_dates_total",
		Help:      "Total number of malformed minguo date strings normalized to the sentinel",
	})

	m.riskAssessments = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "risk_assessments_total",
			Help:      "Total number of risk assessments computed by resulting tier",
		},
		[]string{"tier"},
	)

	m.securitiesTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "securities_total",
		Help:      "Total number of securities in the registry",
	})

	m.attentionTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attention_events_total",
		Help:      "Total number of attention events in the log",
	})

	m.dispositionsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "disposition_intervals_total",
		Help:      "Total number of disposition intervals in the log",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// GetRegistry returns the prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordFetch records a fetch attempt outcome for a feed ("success"/"failure").
func RecordFetch(feed, outcome string) {
	globalManager.fetchTotal.WithLabelValues(feed, outcome).Inc()
}

// RecordFetchRecords adds the number of raw records returned by a feed.
func RecordFetchRecords(feed string, n int) {
	globalManager.fetchRecords.WithLabelValues(feed).Add(float64(n))
}

// RecordRowSkipped records an upstream row dropped during decoding.
func RecordRowSkipped(feed, reason string) {
	globalManager.rowsSkipped.WithLabelValues(feed, reason).Inc()
}

// RecordPass records the outcome of an ingestion pass.
func RecordPass(outcome string) {
	globalManager.passTotal.WithLabelValues(outcome).Inc()
}

// RecordPassDuration records how long a full ingestion pass took.
func RecordPassDuration(seconds float64) {
	globalManager.passDuration.Observe(seconds)
}

// UpdateLastPassUnix records when the last pass completed.
func UpdateLastPassUnix(unix float64) {
	globalManager.passLastUnix.Set(unix)
}

// RecordRowsInserted adds newly merged rows for a log ("attention"/"disposition").
func RecordRowsInserted(log string, n int) {
	globalManager.rowsInserted.WithLabelValues(log).Add(float64(n))
}

// RecordRowsDuplicate adds rows dropped by the idempotency check.
func RecordRowsDuplicate(log string, n int) {
	globalManager.rowsDuplicate.WithLabelValues(log).Add(float64(n))
}

// RecordSecurityCreated records a first-sighting security registration.
func RecordSecurityCreated() {
	globalManager.securitiesCreated.Inc()
}

// RecordSentinelDate records a malformed date normalized to the sentinel.
func RecordSentinelDate() {
	globalManager.sentinelDates.Inc()
}

// RecordRiskAssessment records a computed assessment by tier.
func RecordRiskAssessment(tier string) {
	globalManager.riskAssessments.WithLabelValues(tier).Inc()
}

// UpdateSecuritiesTotal updates the security registry size gauge.
func UpdateSecuritiesTotal(n int64) {
	globalManager.securitiesTotal.Set(float64(n))
}

// UpdateAttentionTotal updates the attention event log size gauge.
func UpdateAttentionTotal(n int64) {
	globalManager.attentionTotal.Set(float64(n))
}

// UpdateDispositionsTotal updates the disposition interval log size gauge.
func UpdateDispositionsTotal(n int64) {
	globalManager.dispositionsTotal.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request by endpoint, method and status.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}
