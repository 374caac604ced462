// Package server provides the HTTP server of the chat API.
//
// The server ties the handlers and middleware together and manages the
// lifecycle: start, graceful shutdown and OS signals (SIGINT, SIGTERM).
//
// # Routes
//
//	POST /v1/chat         chat, JSON or streamed
//	GET  /v1/health       last upstream probe result
//	GET  /v1/model-info   model and summarization settings
//	GET  /                available endpoints
//	GET  /metrics         Prometheus exposition, when metrics are enabled
//
// # Middleware
//
// Requests pass through, outermost first: Recovery, Logging, RequestID,
// Tracing, Metrics and CORS.
//
// # Basic Usage
//
//	srv := server.NewServer(&cfg.Server, server.Dependencies{
//	    Agent:   a,
//	    Health:  checker,
//	    Metrics: collector,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled or a signal arrives, then waits up to
// ShutdownTimeout for in-flight requests.
package server
