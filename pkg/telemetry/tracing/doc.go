// Package tracing provides OpenTelemetry tracing for the interpreter.
//
// New installs a tracer provider exporting spans over OTLP gRPC when
// telemetry.tracing.enabled is set; otherwise every span is a noop.
// Packages start spans with StartSpan, which always uses the global
// provider, and finish them with End:
//
//	ctx, span := tracing.StartSpan(ctx, "agent.chat")
//	defer func() { tracing.End(span, err) }()
//
// Incoming requests continue the caller's trace through W3C Trace Context
// headers (traceparent, tracestate). All samplers are parent-based.
package tracing
