package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/personal-assistant/interpreter/pkg/agent"
	"github.com/personal-assistant/interpreter/pkg/cli"
	"github.com/personal-assistant/interpreter/pkg/config"
	"github.com/personal-assistant/interpreter/pkg/server"
	"github.com/personal-assistant/interpreter/pkg/telemetry/health"
	"github.com/personal-assistant/interpreter/pkg/telemetry/logging"
	"github.com/personal-assistant/interpreter/pkg/telemetry/metrics"
	"github.com/personal-assistant/interpreter/pkg/telemetry/tracing"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	logFormat     string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API with the specified configuration.

The model served upstream is resolved at startup; the command fails if the
model server lists no models. The upstream is then probed on the configured
health schedule, and the configuration file is watched so summarization
settings and the log level can change without a restart.

Examples:
  # Start with default config
  interpreter serve

  # Start with custom config
  interpreter serve --config /etc/interpreter/config.yaml

  # Override listen address
  interpreter serve --listen 0.0.0.0:8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveFlags.logFormat, "log-format", "", "override log format (json, text, console)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if serveFlags.logFormat != "" {
		cfg.Telemetry.Logging.Format = serveFlags.logFormat
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush spans", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	a, err := newAgent(ctx, cfg, provider, collector)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	checker := health.New(cfg.Upstream.HealthTimeout)
	checker.RegisterCheck("upstream", provider.HealthCheck)

	if cfg.Upstream.HealthSchedule != config.HealthScheduleOff {
		scheduler, err := health.NewScheduler(checker, cfg.Upstream.HealthSchedule, func(status health.HealthStatus) {
			collector.UpdateUpstreamHealth(provider.GetName(), status.Healthy)
		})
		if err != nil {
			return cli.NewConfigError("upstream.health_schedule", err.Error())
		}
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			slog.Debug("health scheduler started", "next_probe", next)
		}
	}

	if path := config.Path(); path != "" {
		if err := watchConfig(ctx, path, a, logger); err != nil {
			slog.Warn("config hot reload disabled", "error", err)
		}
	}

	srv := server.NewServer(&cfg.Server, server.Dependencies{
		Agent:       a,
		Health:      checker,
		Metrics:     collector,
		MetricsPath: cfg.Telemetry.Metrics.Path,
	})

	printBanner(cmd, cfg, a)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// watchConfig applies summarization settings and the log level whenever the
// config file changes.
func watchConfig(ctx context.Context, path string, a *agent.Agent, logger *logging.Logger) error {
	watcher, err := config.NewWatcher(path, config.DefaultWatchDebounce)
	if err != nil {
		return err
	}

	go func() {
		defer watcher.Close()
		err := watcher.Watch(ctx, func(cfg *config.Config) {
			applyReload(cfg, a, logger)
		})
		if err != nil {
			slog.Error("config watcher stopped", "error", err)
		}
	}()
	return nil
}

func applyReload(cfg *config.Config, a *agent.Agent, logger *logging.Logger) {
	a.UpdateSettings(
		cfg.Agent.AutoSummarizeEnabled(),
		cfg.Agent.SummarizeThresholdTokens,
		cfg.Agent.VerboseEnabled(),
	)

	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevel(level); err != nil {
		slog.Warn("ignoring reloaded log level", "level", level, "error", err)
	}

	slog.Info("settings reloaded",
		"auto_summarize", cfg.Agent.AutoSummarizeEnabled(),
		"summarize_threshold_tokens", cfg.Agent.SummarizeThresholdTokens,
		"log_level", level,
	)
}

func printBanner(cmd *cobra.Command, cfg *config.Config, a *agent.Agent) {
	out := cmd.OutOrStdout()
	addr := cfg.Server.ListenAddress

	fmt.Fprintf(out, "Interpreter v%s\n", Version)
	if path := config.Path(); path != "" {
		fmt.Fprintf(out, "✓ Configuration loaded from %s\n", path)
	} else {
		fmt.Fprintln(out, "✓ Using default configuration")
	}
	fmt.Fprintf(out, "✓ Model %s at %s\n", a.Model(), cfg.Upstream.BaseURL)
	fmt.Fprintf(out, "✓ Chat endpoint: http://%s%s\n", addr, server.ChatPath)
	fmt.Fprintf(out, "✓ Health endpoint: http://%s%s\n", addr, server.HealthPath)
	if cfg.Telemetry.Metrics.IsEnabled() {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Tracing.Enabled {
		fmt.Fprintf(out, "✓ Exporting traces to %s\n", cfg.Telemetry.Tracing.Endpoint)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
