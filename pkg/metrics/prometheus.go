// Package metrics provides Prometheus metrics for the mentormatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Matching
	rankingRequests     prometheus.Counter
	suggestionsReturned prometheus.Counter
	candidatesScored    prometheus.Counter
	candidatesExcluded  prometheus.Counter
	rankingLatency      prometheus.Histogram
	pairsScored         prometheus.Counter
	events              *prometheus.CounterVec
	rescores            *prometheus.CounterVec
	rescoreLatency      prometheus.Histogram

	// Repository
	matchRecordsTotal prometheus.Gauge
	repositoryLatency *prometheus.HistogramVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mentormatch",
		subsystem:        "matching",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates and registers every metric.
func (m *Manager) initializeMetrics() {
	m.rankingRequests = m.counter("ranking_requests_total", "Total number of candidate ranking runs")
	m.suggestionsReturned = m.counter("suggestions_returned_total", "Total number of suggestions returned to callers")
	m.candidatesScored = m.counter("candidates_scored_total", "Total number of candidate pairs scored while ranking")
	m.candidatesExcluded = m.counter("candidates_excluded_total", "Candidates skipped because of an active or rejected match")
	m.rankingLatency = m.histogram("ranking_latency_ms", "Time to rank a candidate pool in milliseconds")
	m.pairsScored = m.counter("pairs_scored_total", "Total number of single-pair scoring requests")
	m.events = m.counterVec("events_total", "Feedback and status events by kind and outcome", "kind", "outcome")
	m.rescores = m.counterVec("rescores_total", "Pair rescoring jobs by outcome", "outcome")
	m.rescoreLatency = m.histogram("rescore_latency_ms", "Time to apply an event and rescore its pair in milliseconds")

	m.matchRecordsTotal = m.gauge("match_records_total", "Number of persisted mentor/mentee matches")
	m.repositoryLatency = m.histogramVec("repository_latency_ms", "Repository operation latency in milliseconds", "op")

	m.queueSize = m.gauge("queue_size", "Current number of events waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the event queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size over capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Total number of events enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Total number of events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Events rejected by a full or closed queue")

	m.workerCount = m.gauge("workers", "Number of rescoring workers")
	m.workerActiveCount = m.gauge("workers_active", "Number of workers currently processing an event")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_ms", "Worker time per event in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Events a worker failed to process")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_ms", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_ms", "Most recent GC pause in milliseconds")
}

// Matching metrics.

// RecordRanking records one ranking run.
func RecordRanking(scored, excluded, returned int, latencyMs float64) {
	globalManager.rankingRequests.Inc()
	globalManager.candidatesScored.Add(float64(scored))
	globalManager.candidatesExcluded.Add(float64(excluded))
	globalManager.suggestionsReturned.Add(float64(returned))
	globalManager.rankingLatency.Observe(latencyMs)
}

// RecordPairScored increments the single-pair scoring counter.
func RecordPairScored() {
	globalManager.pairsScored.Inc()
}

// RecordEvent counts a feedback or status event by outcome
// (accepted, duplicate, rejected).
func RecordEvent(kind, outcome string) {
	globalManager.events.WithLabelValues(kind, outcome).Inc()
}

// RecordRescore counts a finished rescoring job and its latency.
func RecordRescore(outcome string, latencyMs float64) {
	globalManager.rescores.WithLabelValues(outcome).Inc()
	globalManager.rescoreLatency.Observe(latencyMs)
}

// Repository metrics.

// UpdateMatchRecordsTotal sets the number of persisted matches.
func UpdateMatchRecordsTotal(count int) {
	globalManager.matchRecordsTotal.Set(float64(count))
}

// RecordRepositoryLatency records the latency of a repository operation.
func RecordRepositoryLatency(op string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(op).Observe(latencyMs)
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker metrics.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-event worker latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
