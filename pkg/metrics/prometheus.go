// Package metrics provides Prometheus metrics for the mapper catalog.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the catalog service and the
// ingestion command.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Catalog
	catalogMappers     prometheus.Gauge
	catalogBeatmaps    prometheus.Gauge
	catalogBeatmapsets prometheus.Gauge
	catalogLoadedUnix  prometheus.Gauge
	catalogReloads     *prometheus.CounterVec
	catalogQueries     *prometheus.CounterVec
	catalogQueryEmpty  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Ingestion
	ingestRuns          *prometheus.CounterVec
	ingestRunDuration   prometheus.Histogram
	ingestMappers       *prometheus.CounterVec
	ingestBeatmapsAdded prometheus.Counter
	upstreamRequests    *prometheus.CounterVec
	upstreamRetries     prometheus.Counter
	upstreamDuration    *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kmap",
		subsystem:        "catalog",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.catalogMappers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mappers",
		Help:      "Mappers in the loaded dataset",
	})
	m.catalogBeatmaps = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "beatmaps",
		Help:      "Beatmaps in the loaded dataset",
	})
	m.catalogBeatmapsets = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "beatmapsets",
		Help:      "Distinct beatmapsets derived from the loaded dataset",
	})
	m.catalogLoadedUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loaded_timestamp_seconds",
		Help:      "Unix time of the last successful dataset load",
	})
	m.catalogReloads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reloads_total",
		Help:      "Dataset loads by outcome",
	}, []string{"outcome"})
	m.catalogQueries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queries_total",
		Help:      "Catalog queries by resource",
	}, []string{"resource"})
	m.catalogQueryEmpty = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queries_empty_total",
		Help:      "Catalog queries that matched nothing, by resource",
	}, []string{"resource"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.ingestRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "runs_total",
		Help:      "Ingestion runs by scan kind and outcome",
	}, []string{"scan", "outcome"})
	m.ingestRunDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "run_duration_seconds",
		Help:      "Wall time of ingestion runs",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
	})
	m.ingestMappers = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "mappers_total",
		Help:      "Candidate mappers by result",
	}, []string{"result"})
	m.ingestBeatmapsAdded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "beatmaps_added_total",
		Help:      "Beatmaps newly merged into the dataset",
	})
	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "osu_api",
		Name:      "requests_total",
		Help:      "osu! API requests by endpoint and status code",
	}, []string{"endpoint", "status_code"})
	m.upstreamRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "osu_api",
		Name:      "retries_total",
		Help:      "osu! API request retries",
	})
	m.upstreamDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "osu_api",
		Name:      "request_duration_milliseconds",
		Help:      "osu! API request duration in milliseconds",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"endpoint"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component",
	}, []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Total number of errors by type",
	}, []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "error_latency_milliseconds",
		Help:      "Latency of operations that resulted in errors",
		Buckets:   m.histogramBuckets,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Heap bytes in use",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// Catalog metrics.

// UpdateCatalogTotals sets the size gauges for the loaded dataset.
func UpdateCatalogTotals(mappers, beatmaps, beatmapsets int) {
	globalManager.catalogMappers.Set(float64(mappers))
	globalManager.catalogBeatmaps.Set(float64(beatmaps))
	globalManager.catalogBeatmapsets.Set(float64(beatmapsets))
}

// RecordCatalogReload counts a dataset load. On success the load time is
// recorded too.
func RecordCatalogReload(ok bool, unixSeconds int64) {
	if !ok {
		globalManager.catalogReloads.WithLabelValues("error").Inc()
		return
	}
	globalManager.catalogReloads.WithLabelValues("ok").Inc()
	globalManager.catalogLoadedUnix.Set(float64(unixSeconds))
}

// RecordCatalogQuery counts a query against resource and whether it matched
// nothing.
func RecordCatalogQuery(resource string, empty bool) {
	globalManager.catalogQueries.WithLabelValues(resource).Inc()
	if empty {
		globalManager.catalogQueryEmpty.WithLabelValues(resource).Inc()
	}
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Ingestion metrics.

// RecordIngestRun counts a finished run and observes its duration.
func RecordIngestRun(scan, outcome string, seconds float64) {
	globalManager.ingestRuns.WithLabelValues(scan, outcome).Inc()
	globalManager.ingestRunDuration.Observe(seconds)
}

// RecordIngestMapper counts a candidate mapper by result, such as "updated",
// "excluded" or "failed".
func RecordIngestMapper(result string) {
	globalManager.ingestMappers.WithLabelValues(result).Inc()
}

// RecordBeatmapsAdded adds n newly merged beatmaps.
func RecordBeatmapsAdded(n int) {
	globalManager.ingestBeatmapsAdded.Add(float64(n))
}

// RecordUpstreamRequest records one osu! API attempt.
func RecordUpstreamRequest(endpoint, statusCode string, durationMs float64) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, statusCode).Inc()
	globalManager.upstreamDuration.WithLabelValues(endpoint).Observe(durationMs)
}

// RecordUpstreamRetry counts a retried osu! API request.
func RecordUpstreamRetry() {
	globalManager.upstreamRetries.Inc()
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System metrics.

// CollectSystem samples heap usage and goroutine count.
func CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
