package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/personal-assistant/interpreter/pkg/agent"
	"github.com/personal-assistant/interpreter/pkg/cli"
	"github.com/personal-assistant/interpreter/pkg/config"
	"github.com/personal-assistant/interpreter/pkg/processing"
	"github.com/personal-assistant/interpreter/pkg/providers"
	"github.com/personal-assistant/interpreter/pkg/providers/openai"
	"github.com/personal-assistant/interpreter/pkg/telemetry/logging"
)

// loadConfig loads the global configuration. The default config file is
// optional: when it does not exist, defaults and environment overrides are
// used. A file named explicitly with --config must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgFile
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if flag := cmd.Flag("config"); flag != nil && flag.Changed {
			return nil, cli.NewConfigError("", fmt.Sprintf("config file %s not found", path))
		}
		path = ""
	}

	if err := config.Initialize(path); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return config.GetConfig(), nil
}

// setupLogging installs the process logger. --verbose forces debug level.
func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    os.Stderr,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()
	return logger, nil
}

// providerConfig converts the upstream settings.
func providerConfig(cfg *config.UpstreamConfig) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                "upstream",
		BaseURL:             cfg.BaseURL,
		APIKey:              cfg.APIKey,
		Timeout:             cfg.Timeout,
		MaxRetries:          cfg.Retries(),
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
}

func newProvider(cfg *config.Config) (*openai.Provider, error) {
	provider, err := openai.NewProvider(providerConfig(&cfg.Upstream))
	if err != nil {
		return nil, cli.NewConfigError("upstream", err.Error())
	}
	return provider, nil
}

// newAgent resolves the model and creates the agent. recorder may be nil.
func newAgent(ctx context.Context, cfg *config.Config, provider providers.Provider, recorder agent.Recorder) (*agent.Agent, error) {
	opts := agent.Options{
		Provider:           provider,
		Model:              cfg.Upstream.Model,
		AutoSummarize:      cfg.Agent.AutoSummarizeEnabled(),
		SummarizeThreshold: cfg.Agent.SummarizeThresholdTokens,
		Verbose:            cfg.Agent.VerboseEnabled(),
		Processor:          processing.NewProcessor(nil, cfg.Agent.ContextWarnRatio),
		Metrics:            recorder,
	}

	a, err := agent.New(ctx, opts)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "agent ready",
		"base_url", cfg.Upstream.BaseURL,
		"model", a.Model(),
	)
	return a, nil
}
