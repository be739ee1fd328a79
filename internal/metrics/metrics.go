package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	// Pipeline metrics
	PipelineRunsTotal      *prometheus.CounterVec
	CapabilityCallDuration *prometheus.HistogramVec
	CapabilityErrorsTotal  *prometheus.CounterVec

	// Approval gate metrics
	FeedbackTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on a private registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sessions_active",
				Help: "Number of currently live sessions",
			},
		),
		SessionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sessions_total",
				Help: "Total number of sessions created",
			},
		),

		PipelineRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Total number of pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		CapabilityCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "capability_call_duration_seconds",
				Help:    "Duration of external capability calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		CapabilityErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capability_errors_total",
				Help: "Total number of failed capability calls",
			},
			[]string{"stage"},
		),

		FeedbackTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedback_total",
				Help: "Total number of feedback submissions by resolution",
			},
			[]string{"resolution"},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
	}

	m.registerMetrics()

	return m
}

func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.SessionsActive)
	m.registry.MustRegister(m.SessionsTotal)
	m.registry.MustRegister(m.PipelineRunsTotal)
	m.registry.MustRegister(m.CapabilityCallDuration)
	m.registry.MustRegister(m.CapabilityErrorsTotal)
	m.registry.MustRegister(m.FeedbackTotal)
	m.registry.MustRegister(m.HTTPRequestsTotal)
}

// Handler returns an HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry for testing
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
