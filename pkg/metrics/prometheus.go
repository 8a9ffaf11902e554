// Package metrics provides Prometheus metrics for the topskim selection job.
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

// Manager owns every collector of the job.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Cut flow
	eventsRead       prometheus.Counter
	eventsDuplicate  prometheus.Counter
	eventsByVerdict  *prometheus.CounterVec
	eventsByCategory *prometheus.CounterVec
	weightSum        prometheus.Gauge

	// Physics objects
	leptonsSelected *prometheus.CounterVec
	trackJets       prometheus.Histogram
	taggedJets      prometheus.Histogram
	rho             prometheus.Histogram

	// Processing
	eventLatency      prometheus.Histogram
	histogramsWritten prometheus.Gauge

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerErrors       prometheus.Counter

	// Monitoring endpoints
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "topskim",
		subsystem:        "selection",
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

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.eventsRead = auto.NewCounter(m.counterOpts("events_read_total",
		"Events read from the synchronized input tables"))
	m.eventsDuplicate = auto.NewCounter(m.counterOpts("events_duplicate_total",
		"Events dropped because their (run, lumi, event) id was already seen"))
	m.eventsByVerdict = auto.NewCounterVec(m.counterOpts("events_by_verdict_total",
		"Events by selection verdict (accepted or first failing stage)"), []string{"verdict"})
	m.eventsByCategory = auto.NewCounterVec(m.counterOpts("events_by_category_total",
		"Accepted events by category label"), []string{"category"})
	m.weightSum = auto.NewGauge(m.gaugeOpts("weight_sum",
		"Running sum of event weights over all read events"))

	m.leptonsSelected = auto.NewCounterVec(m.counterOpts("leptons_selected_total",
		"Selected leptons by flavour and pool (loose or tight)"), []string{"flavor", "pool"})
	m.trackJets = auto.NewHistogram(m.histogramOpts("track_jets",
		"Accepted track jets per accepted event", prometheus.LinearBuckets(0, 1, 8)))
	m.taggedJets = auto.NewHistogram(m.histogramOpts("tagged_jets",
		"Calorimeter jets above the b-tag working point per accepted event", prometheus.LinearBuckets(0, 1, 5)))
	m.rho = auto.NewHistogram(m.histogramOpts("charged_rho",
		"Median charged pt density per accepted event", prometheus.LinearBuckets(0, 1, 25)))

	m.eventLatency = auto.NewHistogram(m.histogramOpts("event_processing_seconds",
		"Per-event analysis latency", prometheus.ExponentialBuckets(1e-5, 4, 10)))
	m.histogramsWritten = auto.NewGauge(m.gaugeOpts("histograms_written",
		"Histograms written to the output file"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size",
		"Current size of the event queue (backlog indicator)"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity",
		"Maximum capacity of the event queue"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total",
		"Total number of events enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total",
		"Total number of events dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total",
		"Total number of rejected enqueues"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count",
		"Current number of analysis workers"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total",
		"Total number of worker failures"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Monitoring HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"Monitoring HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
}

// Manager methods. Every recorder is a no-op when the manager is disabled.

// RecordEventRead increments the events read counter.
func (m *Manager) RecordEventRead() {
	if m.enabled {
		m.eventsRead.Inc()
	}
}

// RecordEventDuplicate increments the duplicate events counter.
func (m *Manager) RecordEventDuplicate() {
	if m.enabled {
		m.eventsDuplicate.Inc()
	}
}

// RecordVerdict counts an event under its selection verdict.
func (m *Manager) RecordVerdict(verdict string) {
	if m.enabled {
		m.eventsByVerdict.WithLabelValues(verdict).Inc()
	}
}

// RecordCategories counts an accepted event once per category label.
func (m *Manager) RecordCategories(categories []string) {
	if !m.enabled {
		return
	}
	for _, c := range categories {
		m.eventsByCategory.WithLabelValues(c).Inc()
	}
}

// UpdateWeightSum sets the running weight sum.
func (m *Manager) UpdateWeightSum(sum float64) {
	if m.enabled {
		m.weightSum.Set(sum)
	}
}

// RecordLeptons adds n selected leptons of a flavour and pool.
func (m *Manager) RecordLeptons(flavor, pool string, n int) {
	if m.enabled && n > 0 {
		m.leptonsSelected.WithLabelValues(flavor, pool).Add(float64(n))
	}
}

// ObserveJets records track-jet and tagged-jet multiplicities of an accepted event.
func (m *Manager) ObserveJets(trackJets, taggedJets int) {
	if m.enabled {
		m.trackJets.Observe(float64(trackJets))
		m.taggedJets.Observe(float64(taggedJets))
	}
}

// ObserveRho records the charged background density of an accepted event.
func (m *Manager) ObserveRho(rho float64) {
	if m.enabled {
		m.rho.Observe(rho)
	}
}

// ObserveEventLatency records the analysis time of one event.
func (m *Manager) ObserveEventLatency(d time.Duration) {
	if m.enabled {
		m.eventLatency.Observe(d.Seconds())
	}
}

// UpdateHistogramsWritten sets the number of histograms written.
func (m *Manager) UpdateHistogramsWritten(n int) {
	if m.enabled {
		m.histogramsWritten.Set(float64(n))
	}
}

// Package-level recorders operate on the global manager.

// RecordEventRead increments the events read counter.
func RecordEventRead() { globalManager.RecordEventRead() }

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() { globalManager.RecordEventDuplicate() }

// RecordVerdict counts an event under its selection verdict.
func RecordVerdict(verdict string) { globalManager.RecordVerdict(verdict) }

// RecordCategories counts an accepted event once per category label.
func RecordCategories(categories []string) { globalManager.RecordCategories(categories) }

// UpdateWeightSum sets the running weight sum.
func UpdateWeightSum(sum float64) { globalManager.UpdateWeightSum(sum) }

// RecordLeptons adds n selected leptons of a flavour and pool.
func RecordLeptons(flavor, pool string, n int) { globalManager.RecordLeptons(flavor, pool, n) }

// ObserveJets records jet multiplicities of an accepted event.
func ObserveJets(trackJets, taggedJets int) { globalManager.ObserveJets(trackJets, taggedJets) }

// ObserveRho records the charged background density of an accepted event.
func ObserveRho(rho float64) { globalManager.ObserveRho(rho) }

// ObserveEventLatency records the analysis time of one event.
func ObserveEventLatency(d time.Duration) { globalManager.ObserveEventLatency(d) }

// UpdateHistogramsWritten sets the number of histograms written.
func UpdateHistogramsWritten(n int) { globalManager.UpdateHistogramsWritten(n) }

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
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

// Worker Metrics Functions.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
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

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RefreshInterval returns how often sampled gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RefreshInterval returns the refresh interval of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
