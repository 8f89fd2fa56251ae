package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService exposes Prometheus collectors for the board service.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	rotationTicks   prometheus.Counter
	lockTransitions *prometheus.CounterVec
	adOverrides     prometheus.Counter

	refreshCycles   prometheus.Counter
	refreshSkips    prometheus.Counter
	scheduleLoads   *prometheus.CounterVec
	catalogLoads    *prometheus.CounterVec
	cacheOperations *prometheus.CounterVec

	wsClients      prometheus.Gauge
	activeSessions prometheus.Gauge
}

// NewMetricsService registers all board collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsService{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "board_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "board_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		rotationTicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "board_rotation_ticks_total",
			Help: "Rotation engine tick count",
		}),
		lockTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "board_lock_transitions_total",
			Help: "Rotation lock transitions by direction",
		}, []string{"direction"}),
		adOverrides: factory.NewCounter(prometheus.CounterOpts{
			Name: "board_ad_overrides_total",
			Help: "Advertisement overrides triggered during long locks",
		}),
		refreshCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "board_refresh_cycles_total",
			Help: "Completed auto-refresh cycles",
		}),
		refreshSkips: factory.NewCounter(prometheus.CounterOpts{
			Name: "board_refresh_skips_total",
			Help: "Refresh cycles skipped because the previous cycle was still running",
		}),
		scheduleLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "board_schedule_loads_total",
			Help: "Schedule fetch attempts by outcome",
		}, []string{"outcome"}),
		catalogLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "board_catalog_loads_total",
			Help: "Profile catalog loads by outcome",
		}, []string{"outcome"}),
		cacheOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "board_cache_operations_total",
			Help: "Cache operations by type and result",
		}, []string{"operation", "result"}),
		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "board_websocket_clients",
			Help: "Connected websocket clients",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "board_active_sessions",
			Help: "Running board sessions",
		}),
	}
}

func (m *MetricsService) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *MetricsService) RecordRotationTick() {
	m.rotationTicks.Inc()
}

func (m *MetricsService) RecordLockTransition(entered bool) {
	direction := "exit"
	if entered {
		direction = "enter"
	}
	m.lockTransitions.WithLabelValues(direction).Inc()
}

func (m *MetricsService) RecordAdOverride() {
	m.adOverrides.Inc()
}

func (m *MetricsService) RecordRefreshCycle() {
	m.refreshCycles.Inc()
}

func (m *MetricsService) RecordRefreshSkip() {
	m.refreshSkips.Inc()
}

func (m *MetricsService) RecordScheduleLoad(ok bool) {
	m.scheduleLoads.WithLabelValues(outcomeLabel(ok)).Inc()
}

func (m *MetricsService) RecordCatalogLoad(ok bool) {
	m.catalogLoads.WithLabelValues(outcomeLabel(ok)).Inc()
}

func (m *MetricsService) RecordCacheOperation(operation, result string) {
	m.cacheOperations.WithLabelValues(operation, result).Inc()
}

func (m *MetricsService) WebsocketClientConnected() {
	m.wsClients.Inc()
}

func (m *MetricsService) WebsocketClientDisconnected() {
	m.wsClients.Dec()
}

func (m *MetricsService) SessionStarted() {
	m.activeSessions.Inc()
}

func (m *MetricsService) SessionStopped() {
	m.activeSessions.Dec()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
