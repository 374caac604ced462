package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/personal-assistant/interpreter/pkg/config"
)

// HTTPMetrics tracks metrics of the HTTP API.
//
// Metrics:
//   - interpreter_http_requests_total: Request count by method, route, status
//   - interpreter_http_request_duration_seconds: Request duration histogram
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics creates and registers HTTP metrics with the provided registry.
func NewHTTPMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HTTPMetrics {
	hm := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		hm.requestsTotal,
		hm.requestDuration,
	)

	return hm
}

// RecordRequest records metrics for a served request.
func (hm *HTTPMetrics) RecordRequest(method, route, status string, duration time.Duration) {
	hm.requestsTotal.WithLabelValues(method, route, status).Inc()
	hm.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
