package config

import (
	"fmt"
	"time"

	"dario.cat/mergo"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600

	// Upstream defaults
	DefaultUpstreamBaseURL         = "http://localhost:8000/v1"
	DefaultUpstreamTimeout         = 120 * time.Second
	DefaultUpstreamMaxRetries      = 3
	DefaultUpstreamMaxIdleConns    = 10
	DefaultUpstreamIdleConnTimeout = 90 * time.Second
	DefaultHealthSchedule          = "@every 30s"
	DefaultHealthTimeout           = 5 * time.Second

	// Agent defaults
	DefaultAutoSummarize            = true
	DefaultSummarizeThresholdTokens = 4000
	DefaultContextWarnRatio         = 0.8
	DefaultVerbose                  = true

	// CLI defaults
	DefaultCLIRetryDelay = 5 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "console"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "interpreter"
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingService   = "interpreter"
	DefaultTracingSampler   = "always"
	DefaultTracingRatio     = 1.0
	DefaultTracingInsecure  = true
	DefaultTracingTimeout   = 10 * time.Second
)

// HealthScheduleOff disables upstream health probing.
const HealthScheduleOff = "off"

// Defaults returns a configuration populated with every default value.
// Each call returns a fresh instance, so callers may mutate the result.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   DefaultListenAddress,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxHeaderBytes:  DefaultMaxHeaderBytes,
			CORS: CORSConfig{
				Enabled:        boolPtr(DefaultCORSEnabled),
				AllowedOrigins: []string{"http://localhost:3000", "http://localhost:8000"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization"},
				ExposedHeaders: []string{"X-Request-ID", "X-Trace-ID"},
				MaxAge:         DefaultCORSMaxAge,
			},
		},
		Upstream: UpstreamConfig{
			BaseURL:         DefaultUpstreamBaseURL,
			Timeout:         DefaultUpstreamTimeout,
			MaxRetries:      intPtr(DefaultUpstreamMaxRetries),
			MaxIdleConns:    DefaultUpstreamMaxIdleConns,
			IdleConnTimeout: DefaultUpstreamIdleConnTimeout,
			HealthSchedule:  DefaultHealthSchedule,
			HealthTimeout:   DefaultHealthTimeout,
		},
		Agent: AgentConfig{
			AutoSummarize:            boolPtr(DefaultAutoSummarize),
			SummarizeThresholdTokens: DefaultSummarizeThresholdTokens,
			ContextWarnRatio:         DefaultContextWarnRatio,
			Verbose:                  boolPtr(DefaultVerbose),
		},
		CLI: CLIConfig{
			RetryDelay: DefaultCLIRetryDelay,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLoggingLevel,
				Format: DefaultLoggingFormat,
			},
			Metrics: MetricsConfig{
				Enabled:                boolPtr(DefaultMetricsEnabled),
				Path:                   DefaultMetricsPath,
				Namespace:              DefaultMetricsNamespace,
				RequestDurationBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			Tracing: TracingConfig{
				Endpoint:    DefaultTracingEndpoint,
				ServiceName: DefaultTracingService,
				Sampler:     DefaultTracingSampler,
				SampleRatio: DefaultTracingRatio,
				Insecure:    boolPtr(DefaultTracingInsecure),
				Timeout:     DefaultTracingTimeout,
			},
		},
	}
}

// ApplyDefaults fills every zero-valued field of cfg with its default.
// Fields that were set explicitly, including booleans set to false and
// upstream.max_retries set to 0, are left untouched. Other numeric fields
// treat 0 as unset. This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) error {
	// Pointers are not dereferenced so an explicit false or 0 survives the merge.
	if err := mergo.Merge(cfg, Defaults(), mergo.WithoutDereference); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}
