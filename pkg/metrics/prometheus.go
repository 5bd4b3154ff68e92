// Package metrics provides Prometheus metrics for the padmixer daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels used by RecordAction.
const (
	ResultOK         = "ok"
	ResultError      = "error"
	ResultSuperseded = "superseded"
)

// Manager manages all Prometheus metrics for padmixer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Input
	eventsReceived *prometheus.CounterVec
	eventsUnmapped *prometheus.CounterVec

	// Execution
	actionsExecuted *prometheus.CounterVec
	actionLatency   *prometheus.HistogramVec
	actionErrors    *prometheus.CounterVec

	// Registry
	refreshTotal     prometheus.Counter
	refreshErrors    prometheus.Counter
	refreshLatency   prometheus.Histogram
	targetsResolved  prometheus.Gauge
	backendAvailable prometheus.Gauge

	// Lanes
	laneCount      prometheus.Gauge
	laneDepth      prometheus.Gauge
	laneRejected   prometheus.Counter
	laneSuperseded prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "padmixer",
		subsystem:        "",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.eventsReceived = auto.NewCounterVec(
		m.counterOpts("midi_events_total", "Decoded MIDI events received, by kind"),
		[]string{"kind"},
	)
	m.eventsUnmapped = auto.NewCounterVec(
		m.counterOpts("midi_events_unmapped_total", "MIDI events with no bound action, by kind"),
		[]string{"kind"},
	)

	m.actionsExecuted = auto.NewCounterVec(
		m.counterOpts("actions_total", "Actions executed, by action type and result"),
		[]string{"action", "result"},
	)
	m.actionLatency = auto.NewHistogramVec(
		m.histogramOpts("action_latency_milliseconds", "Time spent executing an action"),
		[]string{"action"},
	)
	m.actionErrors = auto.NewCounterVec(
		m.counterOpts("action_errors_total", "Action failures, by error kind"),
		[]string{"kind"},
	)

	m.refreshTotal = auto.NewCounter(m.counterOpts("registry_refresh_total", "Registry refreshes performed"))
	m.refreshErrors = auto.NewCounter(m.counterOpts("registry_refresh_errors_total", "Registry refreshes that failed to enumerate sessions"))
	m.refreshLatency = auto.NewHistogram(m.histogramOpts("registry_refresh_latency_milliseconds", "Time spent refreshing the audio target registry"))
	m.targetsResolved = auto.NewGauge(m.gaugeOpts("registry_targets_resolved", "Number of symbolic targets currently backed by a live handle"))
	m.backendAvailable = auto.NewGauge(m.gaugeOpts("backend_available", "1 when the platform audio backend initialised, 0 in degraded mode"))

	m.laneCount = auto.NewGauge(m.gaugeOpts("lanes", "Number of execution lanes"))
	m.laneDepth = auto.NewGauge(m.gaugeOpts("lane_queue_depth", "Jobs waiting across all execution lanes"))
	m.laneRejected = auto.NewCounter(m.counterOpts("lane_rejected_total", "Jobs rejected because a lane queue was full or closed"))
	m.laneSuperseded = auto.NewCounter(m.counterOpts("lane_superseded_total", "Pending volume updates dropped because a newer one was queued"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordEventReceived increments the received events counter for kind.
func RecordEventReceived(kind string) {
	globalManager.eventsReceived.WithLabelValues(kind).Inc()
}

// RecordEventUnmapped increments the unmapped events counter for kind.
func RecordEventUnmapped(kind string) {
	globalManager.eventsUnmapped.WithLabelValues(kind).Inc()
}

// RecordAction records one action execution and its latency.
func RecordAction(action, result string, latencyMs float64) {
	globalManager.actionsExecuted.WithLabelValues(action, result).Inc()
	if result != ResultSuperseded {
		globalManager.actionLatency.WithLabelValues(action).Observe(latencyMs)
	}
}

// RecordActionError increments the error counter for an error kind.
func RecordActionError(kind string) {
	globalManager.actionErrors.WithLabelValues(kind).Inc()
}

// RecordRefresh records a registry refresh.
func RecordRefresh(latencyMs float64, failed bool) {
	globalManager.refreshTotal.Inc()
	globalManager.refreshLatency.Observe(latencyMs)
	if failed {
		globalManager.refreshErrors.Inc()
	}
}

// UpdateTargetsResolved sets the resolved targets gauge.
func UpdateTargetsResolved(count int) {
	globalManager.targetsResolved.Set(float64(count))
}

// UpdateBackendAvailable sets the backend availability gauge.
func UpdateBackendAvailable(available bool) {
	if available {
		globalManager.backendAvailable.Set(1)
		return
	}
	globalManager.backendAvailable.Set(0)
}

// UpdateLaneCount sets the number of execution lanes.
func UpdateLaneCount(count int) {
	globalManager.laneCount.Set(float64(count))
}

// UpdateLaneDepth sets the total number of queued jobs.
func UpdateLaneDepth(depth int) {
	globalManager.laneDepth.Set(float64(depth))
}

// RecordLaneRejected increments the rejected jobs counter.
func RecordLaneRejected() {
	globalManager.laneRejected.Inc()
}

// RecordLaneSuperseded increments the superseded jobs counter.
func RecordLaneSuperseded() {
	globalManager.laneSuperseded.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
