// Package metrics provides Prometheus metrics for the fraud transform service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared with callers.
const (
	ChannelFraud   = "fraud"
	ChannelFailure = "failure"

	OutcomeSent       = "sent"
	OutcomeSkipped    = "skipped"
	OutcomeDuplicate  = "duplicate"
	OutcomePublishErr = "error"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Record pipeline
	recordsProcessed *prometheus.CounterVec
	fraudDetected    prometheus.Counter
	batchSize        prometheus.Histogram
	batchDuration    prometheus.Histogram
	recordsRecovered prometheus.Counter

	// Scoring endpoint
	scoringLatency prometheus.Histogram
	scoringErrors  *prometheus.CounterVec
	throttleWait   prometheus.Histogram

	// Alerts
	alerts *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fraudstream",
		subsystem:        "transform",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_total",
		Help:        "Records transformed, by result (Ok or ProcessingFailed)",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.fraudDetected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fraud_detected_total",
		Help:        "Records the model classified as fraudulent",
		ConstLabels: m.constLabels,
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_size_records",
		Help:        "Number of records per transform batch",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		ConstLabels: m.constLabels,
	})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_duration_milliseconds",
		Help:        "Wall time spent transforming one batch",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.recordsRecovered = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_recovered_total",
		Help:        "Records whose transform escaped the transformer and was recovered by the batch driver",
		ConstLabels: m.constLabels,
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scoring_latency_milliseconds",
		Help:        "Latency of scoring endpoint invocations",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.scoringErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scoring_errors_total",
		Help:        "Record-level failures by kind (parse, invoke, response, no_predictions, throttled)",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.throttleWait = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scoring_throttle_wait_milliseconds",
		Help:        "Time spent waiting on the scoring rate limiter",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.alerts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "alerts_total",
		Help:        "Alert dispatch attempts by channel and outcome",
		ConstLabels: m.constLabels,
	}, []string{"channel", "outcome"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordRecord counts one transformed record by its result.
func (m *Manager) RecordRecord(result string) { m.recordsProcessed.WithLabelValues(result).Inc() }

// RecordFraud counts one positive verdict.
func (m *Manager) RecordFraud() { m.fraudDetected.Inc() }

// RecordBatch observes a finished batch.
func (m *Manager) RecordBatch(size int, durationMs float64) {
	m.batchSize.Observe(float64(size))
	m.batchDuration.Observe(durationMs)
}

// RecordRecovered counts a record failed by the batch driver boundary.
func (m *Manager) RecordRecovered() { m.recordsRecovered.Inc() }

// RecordScoringLatency observes one endpoint call.
func (m *Manager) RecordScoringLatency(latencyMs float64) { m.scoringLatency.Observe(latencyMs) }

// RecordScoringError counts a record failure of the given kind.
func (m *Manager) RecordScoringError(kind string) { m.scoringErrors.WithLabelValues(kind).Inc() }

// RecordThrottleWait observes limiter wait time.
func (m *Manager) RecordThrottleWait(waitMs float64) { m.throttleWait.Observe(waitMs) }

// RecordAlert counts an alert attempt.
func (m *Manager) RecordAlert(channel, outcome string) {
	m.alerts.WithLabelValues(channel, outcome).Inc()
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Package-level helpers delegate to the global manager.

func RecordRecord(result string) {
	globalManager.RecordRecord(result)
}

func RecordFraud() {
	globalManager.RecordFraud()
}

func RecordBatch(size int, durationMs float64) {
	globalManager.RecordBatch(size, durationMs)
}

func RecordRecovered() {
	globalManager.RecordRecovered()
}

func RecordScoringLatency(latencyMs float64) {
	globalManager.RecordScoringLatency(latencyMs)
}

func RecordScoringError(kind string) {
	globalManager.RecordScoringError(kind)
}

func RecordThrottleWait(waitMs float64) {
	globalManager.RecordThrottleWait(waitMs)
}

func RecordAlert(channel, outcome string) {
	globalManager.RecordAlert(channel, outcome)
}

func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
