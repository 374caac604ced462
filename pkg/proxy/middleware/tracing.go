package middleware

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/personal-assistant/interpreter/pkg/telemetry/tracing"
)

// TraceIDHeader returns the trace ID of the request span to the client.
const TraceIDHeader = "X-Trace-ID"

// TracingMiddleware starts a server span for every request, continuing the
// caller's trace when it sent W3C trace context headers. Spans are noops
// unless a tracer provider was installed.
//
// Example usage:
//
//	handler = TracingMiddleware(handler)
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.Extract(r.Context(), r.Header)
		ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String(tracing.AttrHTTPMethod, r.Method),
				attribute.String(tracing.AttrHTTPRoute, r.URL.Path),
				attribute.String(tracing.AttrRequestID, GetRequestID(r.Context())),
			),
		)
		defer span.End()

		if traceID := tracing.TraceID(ctx); traceID != "" {
			w.Header().Set(TraceIDHeader, traceID)
		}

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		span.SetAttributes(attribute.Int(tracing.AttrHTTPStatusCode, rw.statusCode))
		if rw.statusCode >= 500 {
			span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
		}
	})
}
