package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/personal-assistant/interpreter/pkg/config"
)

// Collector is the orchestrator for all Prometheus metrics of the
// interpreter. It manages metric registration and provides a unified
// interface for recording metrics across components.
//
// A nil *Collector is valid and records nothing, so components can take an
// optional collector without nil checks.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// HTTP API metrics
	httpMetrics *HTTPMetrics

	// Chat dispatch metrics
	chatMetrics *ChatMetrics

	// Upstream server metrics
	upstreamMetrics *UpstreamMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry with the Go runtime and process collectors is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Namespace: "interpreter"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// Chat latencies of local models range from sub-second to minutes.
		cfg.RequestDurationBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	c.httpMetrics = NewHTTPMetrics(cfg, registry)
	c.chatMetrics = NewChatMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)

	return c
}

// Enabled reports whether metrics are collected. A nil collector is
// disabled.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.IsEnabled()
}

// RecordHTTPRequest records a served HTTP request.
//
// Parameters:
//   - method: HTTP method
//   - route: request path; unknown paths are folded into "other"
//   - status: response status code
//   - duration: time to serve the request, including streaming
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	if !c.cardinalityLimiter.Allow(route) {
		route = "other"
	}

	c.httpMetrics.RecordRequest(method, route, strconv.Itoa(status), duration)
}

// RecordChat records a completed chat dispatch.
//
// Parameters:
//   - model: Model id
//   - mode: "complete" or "stream"
//   - status: "success" or "error"
//   - duration: Total dispatch duration
//   - tokensUsed: total tokens reported by the server, <= 0 when unknown
//
// Example:
//
//	collector.RecordChat("llama-3.1-8b", "stream", "success", 3*time.Second, 812)
func (c *Collector) RecordChat(model, mode, status string, duration time.Duration, tokensUsed int) {
	if !c.Enabled() {
		return
	}

	c.chatMetrics.RecordChat(model, mode, status, duration, tokensUsed)
}

// RecordPromptEstimate records the estimated prompt tokens of a chat turn.
func (c *Collector) RecordPromptEstimate(model string, tokens int) {
	if !c.Enabled() {
		return
	}

	c.chatMetrics.RecordPromptEstimate(model, tokens)
}

// RecordSummarization records a summarization attempt.
func (c *Collector) RecordSummarization(model string, success bool) {
	if !c.Enabled() {
		return
	}

	c.chatMetrics.RecordSummarization(model, success)
}

// UpdateUpstreamHealth updates the health status of the upstream server.
//
// The health metric is a gauge where 1=healthy, 0=unhealthy.
func (c *Collector) UpdateUpstreamHealth(provider string, healthy bool) {
	if !c.Enabled() {
		return
	}

	c.upstreamMetrics.UpdateHealth(provider, healthy)
}

// RecordUpstreamError records an error returned by the upstream client.
// The error is classified with ErrorType.
func (c *Collector) RecordUpstreamError(provider string, err error) {
	if !c.Enabled() || err == nil {
		return
	}

	c.upstreamMetrics.RecordError(provider, ErrorType(err))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
