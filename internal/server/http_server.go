package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alvinjchoi/gtasks-mcp/internal/instrumentation"
	"github.com/alvinjchoi/gtasks-mcp/internal/logging"
)

const (
	// DefaultHTTPAddr is the default listen address for the streamable HTTP transport.
	DefaultHTTPAddr = ":8080"

	// MCPEndpointPath is where the streamable HTTP transport is mounted.
	MCPEndpointPath = instrumentation.PathMCP
)

// HTTPServer serves the MCP server over streamable HTTP together with the
// health endpoints.
type HTTPServer struct {
	mcpServer *mcpserver.MCPServer
	health    *HealthChecker
	metrics   *instrumentation.Metrics
	handler   http.Handler

	mu         sync.Mutex
	httpServer *http.Server
}

// NewHTTPServer creates a streamable HTTP server for mcpServer.
// health and metrics may be nil.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, health *HealthChecker, metrics *instrumentation.Metrics) *HTTPServer {
	s := &HTTPServer{
		mcpServer: mcpServer,
		health:    health,
		metrics:   metrics,
	}
	s.handler = s.buildHandler()
	return s
}

func (s *HTTPServer) buildHandler() http.Handler {
	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
		mcpserver.WithLogger(logging.NewSlogAdapter(slog.Default())),
	)
	mux.Handle(MCPEndpointPath, streamable)

	if s.health != nil {
		s.health.RegisterHealthEndpoints(mux)
	}

	return metricsMiddleware(s.metrics, mux)
}

// Handler returns the root handler. It is exposed for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Start listens on addr and blocks until the server stops.
func (s *HTTPServer) Start(addr string) error {
	if addr == "" {
		addr = DefaultHTTPAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	slog.Info("starting MCP HTTP server", "addr", addr, logging.Transport("streamable-http"))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.health != nil {
		s.health.SetReady(false)
	}
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// metricsMiddleware records every request in the HTTP metrics.
func metricsMiddleware(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
