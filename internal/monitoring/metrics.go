package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the mediator exposes. A fresh
// Registry is created per Metrics instance (rather than registering
// against prometheus.DefaultRegisterer) so tests can construct as many
// independent Metrics values as they like without a duplicate-collector
// panic.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics (admin surface, §6.5)
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// CDP transport metrics (§4.1)
	CDPCallsTotal   *prometheus.CounterVec
	CDPCallDuration *prometheus.HistogramVec
	CDPEventsTotal  *prometheus.CounterVec

	// Client protocol metrics (§6.2)
	ClientMessagesTotal *prometheus.CounterVec
	ClientsActive       *prometheus.GaugeVec

	// Session/registry metrics (§4.4, §4.5)
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsClosed  *prometheus.CounterVec

	// Screencast metrics (§4.2)
	ScreencastFramesTotal prometheus.Counter
	ScreencastsActive     prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	mu       sync.RWMutex
	snapshot Snapshot
}

// Snapshot holds current aggregate values for the /sessions admin
// endpoint (§6.5), which reports cheaply without scraping the full
// Prometheus exposition text.
type Snapshot struct {
	SessionsActive int64
	ClientsActive  int64
	CDPCallsTotal  int64
	CDPErrorsTotal int64
}

// NewMetrics creates a metrics collector bound to a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		Registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediator_http_requests_total",
				Help: "Total number of admin HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mediator_http_request_duration_seconds",
				Help:    "Admin HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		CDPCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediator_cdp_calls_total",
				Help: "Total number of CDP calls issued to the browser pool",
			},
			[]string{"method", "outcome"},
		),
		CDPCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mediator_cdp_call_duration_seconds",
				Help:    "CDP call round-trip duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		CDPEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediator_cdp_events_total",
				Help: "Total number of CDP events received from the browser pool",
			},
			[]string{"method"},
		),

		ClientMessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediator_client_messages_total",
				Help: "Total number of client protocol messages handled",
			},
			[]string{"type", "outcome"},
		),
		ClientsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mediator_clients_active",
				Help: "Number of attached clients by kind (viewer, api)",
			},
			[]string{"kind"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mediator_sessions_active",
				Help: "Number of active browser sessions",
			},
		),
		SessionsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mediator_sessions_created_total",
				Help: "Total number of browser sessions created",
			},
		),
		SessionsClosed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediator_sessions_closed_total",
				Help: "Total number of browser sessions closed, by reason",
			},
			[]string{"reason"},
		),

		ScreencastFramesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mediator_screencast_frames_total",
				Help: "Total number of screencast frames emitted to clients",
			},
		),
		ScreencastsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mediator_screencasts_active",
				Help: "Number of sessions with an active screencast",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mediator_uptime_seconds",
				Help: "Mediator process uptime in seconds",
			},
		),
	}

	go m.updateUptime()
	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records one admin HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.RequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCDPCall records one completed CDP call. It satisfies the
// cdp.Recorder interface structurally, so Transport can be handed a
// *Metrics directly without this package importing cdp.
func (m *Metrics) RecordCDPCall(method string, d time.Duration, outcome string) {
	m.CDPCallsTotal.WithLabelValues(method, outcome).Inc()
	m.CDPCallDuration.WithLabelValues(method).Observe(d.Seconds())

	m.mu.Lock()
	m.snapshot.CDPCallsTotal++
	if outcome != "ok" {
		m.snapshot.CDPErrorsTotal++
	}
	m.mu.Unlock()
}

// RecordCDPEvent records one CDP event delivered from the browser pool.
func (m *Metrics) RecordCDPEvent(method string) {
	m.CDPEventsTotal.WithLabelValues(method).Inc()
}

// RecordClientMessage records one inbound client protocol message.
func (m *Metrics) RecordClientMessage(msgType, outcome string) {
	m.ClientMessagesTotal.WithLabelValues(msgType, outcome).Inc()
}

// SetClientsActive sets the number of attached clients of one kind.
func (m *Metrics) SetClientsActive(kind string, count int) {
	m.ClientsActive.WithLabelValues(kind).Set(float64(count))
	m.mu.Lock()
	m.snapshot.ClientsActive = int64(count)
	m.mu.Unlock()
}

// SetSessionsActive sets the number of active sessions.
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.SessionsActive = int64(count)
	m.mu.Unlock()
}

// IncSessionsCreated increments the sessions-created counter.
func (m *Metrics) IncSessionsCreated() {
	m.SessionsCreated.Inc()
}

// IncSessionsClosed increments the sessions-closed counter for a reason
// ("client_request", "upstream_closed", "error").
func (m *Metrics) IncSessionsClosed(reason string) {
	m.SessionsClosed.WithLabelValues(reason).Inc()
}

// IncScreencastFrames increments the total screencast frames counter.
func (m *Metrics) IncScreencastFrames() {
	m.ScreencastFramesTotal.Inc()
}

// SetScreencastsActive sets the number of sessions currently streaming.
func (m *Metrics) SetScreencastsActive(count int) {
	m.ScreencastsActive.Set(float64(count))
}

// Snapshot returns a cheap point-in-time copy of the aggregate counters
// used by the /sessions admin endpoint.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
