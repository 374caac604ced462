package config

import "time"

// Config is the root configuration structure for the interpreter agent.
// It contains the HTTP server, upstream model server, agent behaviour,
// interactive CLI, and telemetry settings.
type Config struct {
	// Server contains HTTP API server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server" toml:"server"`

	// Upstream describes the OpenAI-compatible model server the agent
	// forwards completions to.
	Upstream UpstreamConfig `yaml:"upstream" toml:"upstream"`

	// Agent controls conversation handling such as automatic summarization.
	Agent AgentConfig `yaml:"agent" toml:"agent"`

	// CLI contains settings for the interactive chat command.
	CLI CLIConfig `yaml:"cli" toml:"cli"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address" toml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout" toml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Streaming replies from slow local models can take minutes,
	// so this is larger than the read timeout.
	// Default: 5m
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes" toml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors" toml:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled *bool `yaml:"enabled" toml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["http://localhost:3000", "http://localhost:8000"]
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods" toml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "Authorization"]
	AllowedHeaders []string `yaml:"allowed_headers" toml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers" toml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600
	MaxAge int `yaml:"max_age" toml:"max_age"`

	// AllowCredentials controls whether credentials are allowed in CORS
	// requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials" toml:"allow_credentials"`
}

// UpstreamConfig describes the OpenAI-compatible model server.
type UpstreamConfig struct {
	// BaseURL is the API root of the model server, including the version
	// segment.
	// Default: "http://localhost:8000/v1"
	BaseURL string `yaml:"base_url" toml:"base_url"`

	// APIKey is sent as a bearer token. Locally hosted servers usually
	// accept an empty key.
	APIKey string `yaml:"api_key" toml:"api_key"`

	// Model pins the model identifier. When empty the first model reported
	// by the server is used.
	Model string `yaml:"model" toml:"model"`

	// Timeout is the per-request timeout for calls to the model server.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`

	// MaxRetries is the retry budget for model listing and health probes.
	// Completion requests are never retried. An explicit 0 disables retries.
	// Default: 3
	MaxRetries *int `yaml:"max_retries" toml:"max_retries"`

	// MaxIdleConns is the idle connection pool size of the shared client.
	// Default: 10
	MaxIdleConns int `yaml:"max_idle_conns" toml:"max_idle_conns"`

	// IdleConnTimeout is how long idle connections are kept.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" toml:"idle_conn_timeout"`

	// HealthSchedule is the cron spec for upstream health probes. An empty
	// string after defaults means "@every 30s"; "off" disables probing.
	// Default: "@every 30s"
	HealthSchedule string `yaml:"health_schedule" toml:"health_schedule"`

	// HealthTimeout bounds a single health probe.
	// Default: 5s
	HealthTimeout time.Duration `yaml:"health_timeout" toml:"health_timeout"`
}

// Retries reports the effective retry budget.
func (c UpstreamConfig) Retries() int {
	if c.MaxRetries == nil {
		return DefaultUpstreamMaxRetries
	}
	return *c.MaxRetries
}

// AgentConfig controls conversation handling.
type AgentConfig struct {
	// AutoSummarize enables summarization once the estimated context size
	// reaches SummarizeThresholdTokens.
	// Default: true
	AutoSummarize *bool `yaml:"auto_summarize" toml:"auto_summarize"`

	// SummarizeThresholdTokens is the estimated token count at which the
	// history is summarized. A 0 in a file means the default; the
	// environment override must be positive.
	// Default: 4000
	SummarizeThresholdTokens int `yaml:"summarize_threshold_tokens" toml:"summarize_threshold_tokens"`

	// ContextWarnRatio is the fraction of the model context window above
	// which a warning is logged.
	// Default: 0.8
	ContextWarnRatio float64 `yaml:"context_warn_ratio" toml:"context_warn_ratio"`

	// Verbose logs token estimates and usage for every call.
	// Default: true
	Verbose *bool `yaml:"verbose" toml:"verbose"`
}

// AutoSummarizeEnabled reports the effective auto-summarize setting.
func (c AgentConfig) AutoSummarizeEnabled() bool {
	return c.AutoSummarize == nil || *c.AutoSummarize
}

// VerboseEnabled reports the effective verbose setting.
func (c AgentConfig) VerboseEnabled() bool {
	return c.Verbose == nil || *c.Verbose
}

// CLIConfig contains settings for the interactive chat command.
type CLIConfig struct {
	// RetryDelay is the fixed delay between attempts when the model server
	// cannot be reached.
	// Default: 5s
	RetryDelay time.Duration `yaml:"retry_delay" toml:"retry_delay"`

	// MaxRetries limits connection attempts. Zero retries forever.
	// Default: 0
	MaxRetries int `yaml:"max_retries" toml:"max_retries"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging" toml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`

	// Tracing configures OpenTelemetry span export.
	Tracing TracingConfig `yaml:"tracing" toml:"tracing"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" toml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "console"
	Format string `yaml:"format" toml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source" toml:"add_source"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled *bool `yaml:"enabled" toml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path" toml:"path"`

	// Namespace is the metric name prefix.
	// Default: "interpreter"
	Namespace string `yaml:"namespace" toml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets" toml:"request_duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing settings.
type TracingConfig struct {
	// Enabled turns on span export. When false a noop tracer is installed.
	// Default: false
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Endpoint is the OTLP gRPC collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint" toml:"endpoint"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "interpreter"
	ServiceName string `yaml:"service_name" toml:"service_name"`

	// Sampler selects the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler" toml:"sampler"`

	// SampleRatio is the fraction of traces kept by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio" toml:"sample_ratio"`

	// Insecure disables TLS to the collector.
	// Default: true
	Insecure *bool `yaml:"insecure" toml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

// IsInsecure reports the effective collector TLS setting.
func (c TracingConfig) IsInsecure() bool {
	return c.Insecure == nil || *c.Insecure
}

// IsEnabled reports the effective metrics setting.
func (c MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// IsEnabled reports the effective CORS setting.
func (c CORSConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
