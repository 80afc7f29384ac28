// Package metrics provides Prometheus metrics for the rallyboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rallyboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Parsing
	linesTotal *prometheus.CounterVec

	// Board state
	boardEntries         prometheus.Gauge
	tierEntries          *prometheus.GaugeVec
	boardLastPublishUnix prometheus.Gauge

	// Reloads
	reloadsTotal   prometheus.Counter
	reloadErrors   prometheus.Counter
	reloadDuration prometheus.Histogram
	watchEvents    *prometheus.CounterVec

	// Repository reads
	repositoryQueryLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
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
		namespace:        "rallyboard",
		subsystem:        "leaderboard",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.linesTotal = auto.NewCounterVec(
		m.counterOpts("lines_total", "Input lines seen by the parser, by outcome"),
		[]string{"outcome"},
	)

	m.boardEntries = auto.NewGauge(m.gaugeOpts("board_entries", "Entries on the published board"))
	m.tierEntries = auto.NewGaugeVec(
		m.gaugeOpts("tier_entries", "Entries per tier on the published board"),
		[]string{"tier"},
	)
	m.boardLastPublishUnix = auto.NewGauge(m.gaugeOpts("board_last_publish_unix", "Unix timestamp of the last board publish"))

	m.reloadsTotal = auto.NewCounter(m.counterOpts("reloads_total", "Successful board reloads"))
	m.reloadErrors = auto.NewCounter(m.counterOpts("reload_errors_total", "Failed board reloads"))
	m.reloadDuration = auto.NewHistogram(m.histogramOpts(
		"reload_duration_milliseconds", "Time to read, parse and rank the data file", m.histogramBuckets))
	m.watchEvents = auto.NewCounterVec(
		m.counterOpts("watch_events_total", "File system events seen by the data file watcher"),
		[]string{"op"},
	)

	m.repositoryQueryLatency = auto.NewHistogram(m.histogramOpts(
		"repository_query_latency_milliseconds", "Board query latency in milliseconds", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordLines adds n lines with the given parser outcome.
func (m *Manager) RecordLines(outcome string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.linesTotal.WithLabelValues(outcome).Add(float64(n))
}

// UpdateBoardEntries sets the number of entries on the published board.
func (m *Manager) UpdateBoardEntries(n int) {
	if m.enabled {
		m.boardEntries.Set(float64(n))
	}
}

// UpdateTierEntries sets the entry count of one tier.
func (m *Manager) UpdateTierEntries(tier string, n int) {
	if m.enabled {
		m.tierEntries.WithLabelValues(tier).Set(float64(n))
	}
}

// UpdateBoardLastPublishUnix sets the publish timestamp.
func (m *Manager) UpdateBoardLastPublishUnix(ts float64) {
	if m.enabled {
		m.boardLastPublishUnix.Set(ts)
	}
}

// RecordReload records a successful reload and its duration.
func (m *Manager) RecordReload(durationMs float64) {
	if m.enabled {
		m.reloadsTotal.Inc()
		m.reloadDuration.Observe(durationMs)
	}
}

// RecordReloadError records a failed reload.
func (m *Manager) RecordReloadError() {
	if m.enabled {
		m.reloadErrors.Inc()
	}
}

// RecordWatchEvent records one watcher event by operation.
func (m *Manager) RecordWatchEvent(op string) {
	if m.enabled {
		m.watchEvents.WithLabelValues(op).Inc()
	}
}

// RecordRepositoryQueryLatency observes a board query latency.
func (m *Manager) RecordRepositoryQueryLatency(latencyMs float64) {
	if m.enabled {
		m.repositoryQueryLatency.Observe(latencyMs)
	}
}

// RecordHTTPRequest increments the HTTP request counter.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByComponent increments the error counter for a component.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if m.enabled {
		m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType increments the error counter for a type and severity.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if m.enabled {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint increments the error counter for an endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency observes the latency of a failed operation.
func (m *Manager) RecordErrorLatency(component, errorType string, latencyMs float64) {
	if m.enabled {
		m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// UpdateSystemMemoryUsage sets the memory gauge.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes an average GC pause.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// Package-level recorders forward to the global manager.

// RecordLines adds n lines with the given parser outcome.
func RecordLines(outcome string, n int) { globalManager.RecordLines(outcome, n) }

// UpdateBoardEntries sets the number of entries on the published board.
func UpdateBoardEntries(n int) { globalManager.UpdateBoardEntries(n) }

// UpdateTierEntries sets the entry count of one tier.
func UpdateTierEntries(tier string, n int) { globalManager.UpdateTierEntries(tier, n) }

// UpdateBoardLastPublishUnix sets the publish timestamp.
func UpdateBoardLastPublishUnix(ts float64) { globalManager.UpdateBoardLastPublishUnix(ts) }

// RecordReload records a successful reload and its duration.
func RecordReload(durationMs float64) { globalManager.RecordReload(durationMs) }

// RecordReloadError records a failed reload.
func RecordReloadError() { globalManager.RecordReloadError() }

// RecordWatchEvent records one watcher event by operation.
func RecordWatchEvent(op string) { globalManager.RecordWatchEvent(op) }

// RecordRepositoryQueryLatency observes a board query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.RecordRepositoryQueryLatency(latencyMs)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// RecordErrorByType increments the error counter for a type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

// RecordErrorByEndpoint increments the error counter for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordErrorLatency observes the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.RecordErrorLatency(component, errorType, latencyMs)
}

// UpdateSystemMemoryUsage sets the memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
