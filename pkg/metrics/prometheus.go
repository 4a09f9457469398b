// Package metrics provides Prometheus metrics for the cartaz
// recommendation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Recommendation metrics
	recommendationsServed  prometheus.Counter
	recommendationLatency  prometheus.Histogram
	recommendationsEmpty   prometheus.Counter
	candidatesScored       prometheus.Counter
	recommendationsByLabel *prometheus.CounterVec

	// Ingestion metrics
	ingestApplied    *prometheus.CounterVec
	ingestDuplicates prometheus.Counter

	// Queue metrics
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Catalog metrics
	catalogUsers   prometheus.Gauge
	catalogEvents  prometheus.Gauge
	catalogTickets prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cartaz",
		subsystem:        "recs",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.recommendationsServed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_served_total",
		Help:      "Total number of recommendation requests served.",
	})
	m.recommendationLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_latency_ms",
		Help:      "Latency of the extract/score/rank pipeline in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.recommendationsEmpty = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_empty_total",
		Help:      "Recommendation requests that returned an empty list.",
	})
	m.candidatesScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_scored_total",
		Help:      "Total number of candidate events scored.",
	})
	m.recommendationsByLabel = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_by_label_total",
		Help:      "Recommendations returned, by basedOn label.",
	}, []string{"based_on"})

	m.ingestApplied = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_applied_total",
		Help:      "Catalog records applied to the store, by kind.",
	}, []string{"kind"})
	m.ingestDuplicates = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_duplicates_total",
		Help:      "Catalog records acknowledged as duplicates.",
	})

	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the ingestion queue.",
	})
	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued records.",
	})
	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Records successfully enqueued.",
	})
	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Records dequeued by workers.",
	})
	m.queueEnqueueErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Failed enqueue attempts, by cause.",
	}, []string{"cause"})

	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of ingestion workers.",
	})
	m.workerProcessingLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_ms",
		Help:      "Latency of applying one record to the store in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.workerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Records that failed to apply.",
	})

	m.catalogUsers = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_users",
		Help:      "Users currently in the catalog.",
	})
	m.catalogEvents = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_events",
		Help:      "Events currently in the catalog.",
	})
	m.catalogTickets = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_tickets",
		Help:      "Tickets currently in the catalog.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests, by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Allocated heap bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Number of live goroutines.",
	})
}

// Recommendation metrics.

func RecordRecommendationServed() {
	globalManager.recommendationsServed.Inc()
}

func RecordRecommendationLatency(latencyMs float64) {
	globalManager.recommendationLatency.Observe(latencyMs)
}

func RecordRecommendationEmpty() {
	globalManager.recommendationsEmpty.Inc()
}

func RecordCandidatesScored(n int) {
	globalManager.candidatesScored.Add(float64(n))
}

func RecordRecommendationLabel(basedOn string) {
	globalManager.recommendationsByLabel.WithLabelValues(basedOn).Inc()
}

// Ingestion metrics.

func RecordIngestApplied(kind string) {
	globalManager.ingestApplied.WithLabelValues(kind).Inc()
}

func RecordIngestDuplicate() {
	globalManager.ingestDuplicates.Inc()
}

// Queue metrics.

func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

func RecordQueueEnqueueError(cause string) {
	globalManager.queueEnqueueErrors.WithLabelValues(cause).Inc()
}

// Worker metrics.

func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Catalog metrics.

func UpdateCatalogCounts(users, events, tickets int) {
	globalManager.catalogUsers.Set(float64(users))
	globalManager.catalogEvents.Set(float64(events))
	globalManager.catalogTickets.Set(float64(tickets))
}

// HTTP metrics.

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// System metrics.

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry serving /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
