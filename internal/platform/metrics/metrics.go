package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus collectors for the broadcast server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	transitionsTotal  *prometheus.CounterVec
	uploadsTotal      prometheus.Counter
	streamBytesTotal  prometheus.Counter
	streamErrorsTotal prometheus.Counter
	filesPurgedTotal  prometheus.Counter
	listeners         prometheus.Gauge
	sessions          prometheus.Gauge
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radio_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radio_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radio_state_transitions_total",
			Help: "Broadcast state transitions committed, by event",
		}, []string{"event"}),
		uploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radio_uploads_total",
			Help: "Audio files accepted and stored",
		}),
		streamBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radio_stream_bytes_total",
			Help: "Audio bytes delivered to listeners",
		}),
		streamErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radio_stream_failures_total",
			Help: "Audio deliveries aborted by a read or write error",
		}),
		filesPurgedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radio_retention_files_removed_total",
			Help: "Uploaded files removed by the retention sweep",
		}),
		listeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "radio_listeners",
			Help: "Connected real-time channel clients",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "radio_sessions",
			Help: "Live login sessions",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.transitionsTotal,
		m.uploadsTotal,
		m.streamBytesTotal,
		m.streamErrorsTotal,
		m.filesPurgedTotal,
		m.listeners,
		m.sessions,
	)

	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	if m != nil {
		m.requestsTotal.Inc()
	}
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	if m != nil {
		m.errorsTotal.Inc()
	}
}

// IncTransition counts one committed state transition.
func (m *Metrics) IncTransition(event string) {
	if m != nil {
		m.transitionsTotal.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) IncUploads() {
	if m != nil {
		m.uploadsTotal.Inc()
	}
}

func (m *Metrics) AddStreamBytes(n int64) {
	if m != nil && n > 0 {
		m.streamBytesTotal.Add(float64(n))
	}
}

func (m *Metrics) IncStreamFailures() {
	if m != nil {
		m.streamErrorsTotal.Inc()
	}
}

func (m *Metrics) AddFilesPurged(n int) {
	if m != nil && n > 0 {
		m.filesPurgedTotal.Add(float64(n))
	}
}

// SetListeners sets the connected listeners gauge.
func (m *Metrics) SetListeners(n int) {
	if m != nil {
		m.listeners.Set(float64(n))
	}
}

// SetSessions sets the live sessions gauge.
func (m *Metrics) SetSessions(n int) {
	if m != nil {
		m.sessions.Set(float64(n))
	}
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
