package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/personal-assistant/interpreter/pkg/config"
	"github.com/personal-assistant/interpreter/pkg/providers"
)

// UpstreamMetrics tracks metrics related to the upstream model server.
//
// Metrics:
//   - interpreter_upstream_health: Health status (1=healthy, 0=unhealthy)
//   - interpreter_upstream_errors_total: Error count by type
type UpstreamMetrics struct {
	// Health status (gauge: 1=healthy, 0=unhealthy)
	health *prometheus.GaugeVec

	// Error counter
	errors *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "upstream",
				Name:      "health",
				Help:      "Upstream model server health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "upstream",
				Name:      "errors_total",
				Help:      "Total number of upstream errors by type",
			},
			[]string{"provider", "error_type"},
		),
	}

	registry.MustRegister(
		um.health,
		um.errors,
	)

	return um
}

// UpdateHealth updates the health status of the upstream server.
func (um *UpstreamMetrics) UpdateHealth(provider string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	um.health.WithLabelValues(provider).Set(value)
}

// RecordError records an upstream error.
func (um *UpstreamMetrics) RecordError(provider, errorType string) {
	um.errors.WithLabelValues(provider, errorType).Inc()
}

// ErrorType classifies an upstream error for the error_type label.
//
// Error types:
//   - "rate_limit": Rate limit exceeded
//   - "timeout": Request timeout
//   - "auth": Authentication/authorization error
//   - "server_error": Server error (5xx)
//   - "client_error": Client error (4xx)
//   - "network": Server unreachable
//   - "parse": Response parsing error
//   - "stream": Failure while reading a stream
//   - "other": Anything else
func ErrorType(err error) string {
	var (
		rateErr    *providers.RateLimitError
		timeoutErr *providers.TimeoutError
		authErr    *providers.AuthError
		parseErr   *providers.ParseError
		streamErr  *providers.StreamError
		provErr    *providers.ProviderError
	)

	switch {
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &provErr) && provErr.StatusCode >= 500:
		return "server_error"
	case errors.As(err, &provErr) && provErr.StatusCode >= 400:
		return "client_error"
	case providers.IsConnectionError(err):
		return "network"
	case errors.As(err, &streamErr):
		return "stream"
	default:
		return "other"
	}
}
