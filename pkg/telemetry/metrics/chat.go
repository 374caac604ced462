package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/personal-assistant/interpreter/pkg/config"
)

// ChatMetrics tracks chat dispatch metrics.
//
// Metrics:
//   - interpreter_chat_requests_total: Chat count by model, mode, status
//   - interpreter_chat_duration_seconds: Chat duration histogram
//   - interpreter_chat_tokens_total: Tokens reported by the server
//   - interpreter_chat_prompt_tokens_estimate: Estimated prompt tokens per turn
//   - interpreter_chat_summarizations_total: Summarizations by result
type ChatMetrics struct {
	requestsTotal  *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	tokensTotal    *prometheus.CounterVec
	promptEstimate *prometheus.HistogramVec
	summarizations *prometheus.CounterVec
}

// NewChatMetrics creates and registers chat metrics with the provided registry.
func NewChatMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ChatMetrics {
	cm := &ChatMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "chat",
				Name:      "requests_total",
				Help:      "Total number of chat dispatches",
			},
			[]string{"model", "mode", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "chat",
				Name:      "duration_seconds",
				Help:      "Duration of chat dispatches in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"model", "mode"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "chat",
				Name:      "tokens_total",
				Help:      "Total tokens reported by the model server",
			},
			[]string{"model"},
		),

		promptEstimate: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "chat",
				Name:      "prompt_tokens_estimate",
				Help:      "Estimated prompt tokens per chat turn",
				Buckets:   []float64{100, 500, 1000, 2000, 4000, 8000, 16000, 32000},
			},
			[]string{"model"},
		),

		summarizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "chat",
				Name:      "summarizations_total",
				Help:      "Total number of conversation summarizations by result",
			},
			[]string{"model", "result"},
		),
	}

	registry.MustRegister(
		cm.requestsTotal,
		cm.duration,
		cm.tokensTotal,
		cm.promptEstimate,
		cm.summarizations,
	)

	return cm
}

// RecordChat records a completed chat dispatch.
func (cm *ChatMetrics) RecordChat(model, mode, status string, duration time.Duration, tokensUsed int) {
	cm.requestsTotal.WithLabelValues(model, mode, status).Inc()
	cm.duration.WithLabelValues(model, mode).Observe(duration.Seconds())

	if tokensUsed > 0 {
		cm.tokensTotal.WithLabelValues(model).Add(float64(tokensUsed))
	}
}

// RecordPromptEstimate records an estimated prompt size.
func (cm *ChatMetrics) RecordPromptEstimate(model string, tokens int) {
	cm.promptEstimate.WithLabelValues(model).Observe(float64(tokens))
}

// RecordSummarization records a summarization attempt.
func (cm *ChatMetrics) RecordSummarization(model string, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	cm.summarizations.WithLabelValues(model, result).Inc()
}
