// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server wraps its routes in this order:
//
//	handler = Recovery(Logging(RequestID(Tracing(Metrics(CORS(mux))))))
//
// Order (outermost to innermost):
//  1. Recovery: recover from panics with a 500 {"detail": ...} response
//  2. Logging: log method, path, status and latency of every request
//  3. RequestID: read or generate X-Request-ID and add it to the context
//  4. Tracing: start a server span, continuing W3C trace context headers
//  5. Metrics: record request count and latency per route
//  6. CORS: add Cross-Origin Resource Sharing headers, answer preflights
//
// # Request ID
//
// RequestIDMiddleware generates a UUID v4 for each request unless the client
// sent one:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is stored in the logging context, so every slog call made with
// the request context includes request_id.
//
// # Streaming
//
// The wrapped response writers implement http.Flusher, so handlers that
// stream keep flushing through the whole chain.
package middleware
