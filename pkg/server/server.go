package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/personal-assistant/interpreter/pkg/config"
	"github.com/personal-assistant/interpreter/pkg/proxy/handlers"
	"github.com/personal-assistant/interpreter/pkg/proxy/middleware"
	"github.com/personal-assistant/interpreter/pkg/proxy/types"
	"github.com/personal-assistant/interpreter/pkg/telemetry/metrics"
)

// API routes.
const (
	ChatPath      = "/v1/chat"
	HealthPath    = "/v1/health"
	ModelInfoPath = "/v1/model-info"
	RootPath      = "/"
)

// Dependencies are the components the server routes requests to.
type Dependencies struct {
	// Agent answers chat requests. Required.
	Agent handlers.ChatAgent

	// Health supplies the last upstream probe result. Optional.
	Health handlers.HealthSource

	// Metrics records HTTP metrics and serves the exposition endpoint.
	// Optional.
	Metrics *metrics.Collector

	// MetricsPath is where the exposition endpoint is mounted.
	// Default: "/metrics"
	MetricsPath string
}

// Server is the HTTP server of the chat API.
type Server struct {
	config       *config.ServerConfig
	deps         Dependencies
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
}

// NewServer creates a new server.
func NewServer(cfg *config.ServerConfig, deps Dependencies) *Server {
	if deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultMetricsPath
	}
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, SIGINT or SIGTERM is received, or Stop is called. It then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like Start but accepts connections on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.addr = ln.Addr()
	s.httpServer = &http.Server{
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"address", ln.Addr().String(),
			"model", s.deps.Agent.Model(),
		)

		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start or Serve to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		httpServer := s.httpServer
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("server stopped")
	})

	return shutdownErr
}

// Endpoints returns the API routes listed by GET /.
func (s *Server) Endpoints() []types.Endpoint {
	return []types.Endpoint{
		{Path: ChatPath, Methods: []string{http.MethodPost}, Name: "chat"},
		{Path: HealthPath, Methods: []string{http.MethodGet}, Name: "health_check"},
		{Path: ModelInfoPath, Methods: []string{http.MethodGet}, Name: "get_model_info"},
	}
}

func (s *Server) metricsEnabled() bool {
	return s.deps.Metrics != nil && s.deps.Metrics.Enabled()
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(ChatPath, handlers.NewChatHandler(s.deps.Agent))
	mux.Handle(HealthPath, handlers.NewHealthHandler(s.deps.Agent, s.deps.Health))
	mux.Handle(ModelInfoPath, handlers.NewModelInfoHandler(s.deps.Agent))
	mux.Handle(RootPath, handlers.NewRootHandler(s.Endpoints()))
	if s.metricsEnabled() {
		mux.Handle(s.deps.MetricsPath, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux

	// CORS middleware (innermost, answers preflight requests)
	handler = middleware.CORSMiddleware(middleware.NewCORSConfig(s.config.CORS))(handler)

	// Metrics middleware
	if s.deps.Metrics != nil {
		handler = middleware.MetricsMiddleware(s.deps.Metrics)(handler)
	}

	// Tracing middleware (sees the request ID)
	handler = middleware.TracingMiddleware(handler)

	// Request ID middleware
	handler = middleware.RequestIDMiddleware(handler)

	// Logging middleware
	handler = middleware.LoggingMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the address the server listens on, or nil before it starts.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
