// Package metrics provides Prometheus metrics collection for the interpreter.
//
// # Metrics Categories
//
//   - HTTP Metrics: request count and duration per route
//   - Chat Metrics: dispatch count, duration, server-reported tokens, prompt
//     estimates, and summarizations
//   - Upstream Metrics: model server health and errors by type
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordChat("llama-3.1-8b", "complete", "success", time.Second, 812)
//	collector.RecordSummarization("llama-3.1-8b", true)
//	collector.UpdateUpstreamHealth("upstream", true)
//
// A nil *Collector is accepted by every Record method and does nothing.
//
// # Prometheus Endpoint
//
// All metrics are exposed on the configured path in standard Prometheus
// format:
//
//	# HELP interpreter_chat_requests_total Total number of chat dispatches
//	# TYPE interpreter_chat_requests_total counter
//	interpreter_chat_requests_total{mode="stream",model="llama",status="success"} 42
//
// # Cardinality Management
//
// Routes are free-form request paths, so the collector folds paths beyond
// the first 1000 distinct values into "other".
package metrics
