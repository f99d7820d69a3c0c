// Package observability exports Audit Logs API call metrics to Prometheus.
package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"slackaudit/auditlogs"
)

// Metrics holds the collectors updated by the hooks.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// NewMetrics registers the collectors with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slackaudit_requests_total",
				Help: "Total number of Audit Logs API calls by method, endpoint and status",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "slackaudit_request_duration_seconds",
				Help:    "Duration of Audit Logs API calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "slackaudit_requests_in_flight",
				Help: "Number of Audit Logs API calls currently in flight",
			},
		),
	}
}

// Hooks returns client hooks that update m.
func (m *Metrics) Hooks() auditlogs.Hooks {
	return auditlogs.Hooks{
		OnRequestStart: func(ctx context.Context, _ auditlogs.RequestInfo) context.Context {
			m.RequestsInFlight.Inc()
			return ctx
		},
		OnRequestEnd: func(_ context.Context, info auditlogs.ResponseInfo) {
			m.RequestsInFlight.Dec()
			m.RequestsTotal.WithLabelValues(info.Method, info.Endpoint, statusLabel(info)).Inc()
			m.RequestDuration.WithLabelValues(info.Method, info.Endpoint).Observe(info.Duration.Seconds())
		},
	}
}

// NewPrometheusHooks registers metrics with reg and returns hooks feeding them.
func NewPrometheusHooks(reg prometheus.Registerer) auditlogs.Hooks {
	return NewMetrics(reg).Hooks()
}

// statusLabel is the HTTP status code, or "error" when no response arrived.
func statusLabel(info auditlogs.ResponseInfo) string {
	if info.StatusCode == 0 {
		return "error"
	}
	return strconv.Itoa(info.StatusCode)
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for the node-exporter textfile collector. The write is atomic.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
