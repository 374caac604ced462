// Package telemetry groups the observability packages of the interpreter.
//
// # Components
//
//   - logging: slog handlers (json, text, console) with request-scoped fields
//   - metrics: Prometheus collectors for HTTP, chat and upstream activity
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: upstream probes run on a cron schedule
//
// # Usage
//
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//	logger.SetDefault()
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	tracer, _ := tracing.New(ctx, &cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("upstream", provider.HealthCheck)
package telemetry
