// Package metrics provides Prometheus metrics for the swing coaching service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Pipeline metrics
	samplesIngested    *prometheus.CounterVec
	malformedInput     *prometheus.CounterVec
	detectorDecisions  *prometheus.CounterVec
	swingsDetected     prometheus.Counter
	windowLength       prometheus.Histogram
	sampleBufferLength prometheus.Gauge

	// Classification metrics
	classifications       *prometheus.CounterVec
	classificationLatency prometheus.Histogram
	staleResultsDropped   prometheus.Counter
	pollDuplicates        prometheus.Counter
	datasetWindows        prometheus.Counter

	// Coaching metrics
	coachingOutcomes *prometheus.CounterVec

	// Session metrics
	sessionSwings      prometheus.Gauge
	sessionAccuracy    prometheus.Gauge
	sessionPerformance prometheus.Gauge
	streaming          prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	feedbackClients     prometheus.Gauge

	// Emission queue metrics
	queueCapacity          prometheus.Gauge
	queueSize              prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueCancelled         prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Emission worker metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error tracking
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swing",
		subsystem:        "coach",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval returns how often gauges fed by pollers should update.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.samplesIngested = m.counterVec("samples_ingested_total",
		"Total number of motion samples pushed into the pipeline", "source")
	m.malformedInput = m.counterVec("malformed_input_total",
		"Total number of rejected packets, lines or rows", "source")
	m.detectorDecisions = m.counterVec("detector_decisions_total",
		"Detector outcomes per evaluated sample", "decision")
	m.swingsDetected = m.counter("swings_detected_total",
		"Total number of swing events detected")
	m.windowLength = m.histogram("window_length_samples",
		"Length of windows submitted for classification",
		[]float64{10, 20, 40, 60, 80, 100, 150, 200})
	m.sampleBufferLength = m.gauge("sample_buffer_length",
		"Samples currently held in the ring buffer")

	m.classifications = m.counterVec("classification_requests_total",
		"Classifier calls by purpose and outcome", "purpose", "outcome")
	m.classificationLatency = m.histogram("classification_latency_milliseconds",
		"Classifier round-trip latency in milliseconds",
		[]float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000})
	m.staleResultsDropped = m.counter("stale_results_dropped_total",
		"Results discarded because the stream was restarted while in flight")
	m.pollDuplicates = m.counter("poll_duplicates_total",
		"Polled results ignored because their fingerprint did not change")
	m.datasetWindows = m.counter("dataset_windows_total",
		"Resampled windows captured by the dataset recorder")

	m.coachingOutcomes = m.counterVec("coaching_messages_total",
		"Coaching messages by throttle outcome", "outcome")

	m.sessionSwings = m.gauge("session_swings",
		"Swings recorded in the current session")
	m.sessionAccuracy = m.gauge("session_accuracy_ratio",
		"Count-weighted accuracy of the current session")
	m.sessionPerformance = m.gauge("session_performance_score",
		"Performance score of the current session")
	m.streaming = m.gauge("streaming",
		"1 while the sample stream is active")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.feedbackClients = m.gauge("feedback_clients",
		"Connected feedback WebSocket clients")

	m.queueCapacity = m.gauge("emission_queue_capacity", "Maximum emission queue capacity")
	m.queueSize = m.gauge("emission_queue_size", "Current emission queue size")
	m.queueUtilization = m.gauge("emission_queue_utilization_ratio",
		"Emission queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("emission_queue_enqueue_total", "Total number of emissions enqueued")
	m.queueDequeueRate = m.counter("emission_queue_dequeue_total", "Total number of emissions dequeued")
	m.queueEnqueueErrors = m.counter("emission_queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueCancelled = m.counter("emission_queue_cancelled_total", "Queued emissions dropped before delivery")
	m.queueProcessingLatency = m.histogram("emission_queue_latency_milliseconds",
		"Time an emission waited in the queue in milliseconds", m.histogramBuckets)

	m.workerActiveCount = m.gauge("emission_worker_active_count", "Number of running emission workers")
	m.workerProcessingLatency = m.histogram("emission_worker_latency_milliseconds",
		"Time spent delivering one emission to all sinks", m.histogramBuckets)
	m.workerErrorRate = m.counter("emission_worker_errors_total", "Total number of sink delivery errors")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Pipeline Metrics Functions.

// RecordSampleIngested counts one sample from source.
func RecordSampleIngested(source string) {
	globalManager.samplesIngested.WithLabelValues(source).Inc()
}

// RecordMalformedInput counts one rejected packet, line or row.
func RecordMalformedInput(source string) {
	globalManager.malformedInput.WithLabelValues(source).Inc()
}

// RecordDetectorDecision counts one detector outcome.
func RecordDetectorDecision(decision string) {
	globalManager.detectorDecisions.WithLabelValues(decision).Inc()
}

// RecordSwingDetected counts one detected swing and its window length.
func RecordSwingDetected(windowLen int) {
	globalManager.swingsDetected.Inc()
	globalManager.windowLength.Observe(float64(windowLen))
}

// UpdateSampleBufferLength sets the current ring buffer fill.
func UpdateSampleBufferLength(n int) {
	globalManager.sampleBufferLength.Set(float64(n))
}

// Classification Metrics Functions.

// RecordClassification counts one classifier call outcome.
func RecordClassification(purpose, outcome string) {
	globalManager.classifications.WithLabelValues(purpose, outcome).Inc()
}

// RecordClassificationLatency records classifier latency in milliseconds.
func RecordClassificationLatency(latencyMs float64) {
	globalManager.classificationLatency.Observe(latencyMs)
}

// RecordStaleResultDropped counts a result dropped after an epoch change.
func RecordStaleResultDropped() {
	globalManager.staleResultsDropped.Inc()
}

// RecordPollDuplicate counts a polled result whose fingerprint was unchanged.
func RecordPollDuplicate() {
	globalManager.pollDuplicates.Inc()
}

// RecordDatasetWindow counts one window captured for the dataset.
func RecordDatasetWindow() {
	globalManager.datasetWindows.Inc()
}

// RecordCoachingOutcome counts one throttle decision.
func RecordCoachingOutcome(outcome string) {
	globalManager.coachingOutcomes.WithLabelValues(outcome).Inc()
}

// Session Metrics Functions.

// UpdateSession publishes the headline numbers of the current session.
func UpdateSession(swings int, accuracy float64, performance int) {
	globalManager.sessionSwings.Set(float64(swings))
	globalManager.sessionAccuracy.Set(accuracy)
	globalManager.sessionPerformance.Set(float64(performance))
}

// UpdateStreaming sets whether the sample stream is active.
func UpdateStreaming(active bool) {
	v := 0.0
	if active {
		v = 1
	}
	globalManager.streaming.Set(v)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateFeedbackClients sets the number of connected feedback clients.
func UpdateFeedbackClients(n int) {
	globalManager.feedbackClients.Set(float64(n))
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueCancelled counts emissions dropped from the queue.
func RecordQueueCancelled(n int) {
	globalManager.queueCancelled.Add(float64(n))
}

// RecordQueueProcessingLatency records queue wait time.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
