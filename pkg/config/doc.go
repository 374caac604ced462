// Package config provides configuration management for the interpreter agent.
//
// This package handles loading, validating, and managing configuration from
// YAML or TOML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a file only (".toml" is TOML, anything else YAML):
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// Passing an empty path to LoadConfigWithEnvOverrides starts from defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention INTERPRETER_SECTION_FIELD.
// For example:
//
//   - INTERPRETER_UPSTREAM_BASE_URL overrides upstream.base_url
//   - INTERPRETER_AGENT_AUTO_SUMMARIZE overrides agent.auto_summarize
//   - INTERPRETER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Precedence
//
// Defaults are overlaid by the file, the file by the environment, and the
// result is validated as a whole: Validate reports every invalid field in
// one ValidationError instead of stopping at the first.
//
// Numeric fields treat 0 as unset and fall back to their default. Booleans
// and upstream.max_retries are pointers, so an explicit false or 0 is kept.
//
// # Hot Reload
//
// Watcher observes the configuration file and delivers each successfully
// reloaded Config to a callback. The server uses it to update the agent's
// summarization settings and the log level without a restart.
//
// # Example Configuration
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	upstream:
//	  base_url: "http://localhost:8000/v1"
//
//	agent:
//	  auto_summarize: true
//	  summarize_threshold_tokens: 4000
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "console"
//	  tracing:
//	    enabled: true
//	    endpoint: "otel-collector:4317"
//
// The same file may be written in TOML:
//
//	[upstream]
//	base_url = "http://localhost:8000/v1"
//
//	[agent]
//	summarize_threshold_tokens = 8000
package config
