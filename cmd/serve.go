package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alvinjchoi/gtasks-mcp/internal/google"
	"github.com/alvinjchoi/gtasks-mcp/internal/instrumentation"
	"github.com/alvinjchoi/gtasks-mcp/internal/logging"
	"github.com/alvinjchoi/gtasks-mcp/internal/resources"
	"github.com/alvinjchoi/gtasks-mcp/internal/server"
	"github.com/alvinjchoi/gtasks-mcp/internal/tools/tasks_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"

	serverName = "gtasks-mcp"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveConfig collects everything runServe needs after flags and
// environment have been resolved.
type serveConfig struct {
	Debug     bool
	Transport string
	HTTPAddr  string
	ReadOnly  bool
	LogFormat string

	CredentialsFile string
	KeysFile        string

	Metrics MetricsConfig
}

func newServeCmd() *cobra.Command {
	cfg := serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server using the specified transport.

Supports:
- stdio: Standard input/output (default)
- streamable-http: Streamable HTTP on --http-addr, endpoint /mcp

All six task tools are registered by default. Use --read-only to expose only
search and list.

Credentials are taken from GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and
GOOGLE_REFRESH_TOKEN, or from the file written by "gtasks-mcp auth".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.applyEnv(cmd, os.Getenv)
			return runServe(cmd.Context(), cfg)
		},
	}

	bindServeFlags(cmd, &cfg)

	return cmd
}

func bindServeFlags(cmd *cobra.Command, cfg *serveConfig) {
	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&cfg.Transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&cfg.HTTPAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&cfg.ReadOnly, "read-only", false, "Only register the search and list tools")
	cmd.Flags().StringVar(&cfg.LogFormat, "log-format", string(logging.FormatJSON), "Log format: json or text")
	cmd.Flags().StringVar(&cfg.CredentialsFile, "credentials-file", "", "OAuth token file (default: $XDG_CONFIG_HOME/gtasks-mcp/credentials.json)")
	cmd.Flags().StringVar(&cfg.KeysFile, "keys-file", "", "OAuth client keys file used to refresh file-based tokens")
	cmd.Flags().BoolVar(&cfg.Metrics.Enabled, "metrics-enabled", false, "Start the Prometheus metrics server (not used with stdio)")
	cmd.Flags().StringVar(&cfg.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")
}

// applyEnv fills settings whose flag was not given from the environment.
func (c *serveConfig) applyEnv(cmd *cobra.Command, getenv func(string) string) {
	changed := func(name string) bool {
		return cmd != nil && cmd.Flags().Changed(name)
	}

	if !changed("debug") {
		if v, ok := parseBool(getenv("GTASKS_DEBUG")); ok {
			c.Debug = v
		}
	}
	if !changed("transport") {
		if v := getenv("GTASKS_TRANSPORT"); v != "" {
			c.Transport = v
		}
	}
	if !changed("http-addr") {
		if v := getenv("GTASKS_HTTP_ADDR"); v != "" {
			c.HTTPAddr = v
		}
	}
	if !changed("read-only") {
		if v, ok := parseBool(getenv("GTASKS_READ_ONLY")); ok {
			c.ReadOnly = v
		}
	}
	if !changed("log-format") {
		if v := getenv("LOG_FORMAT"); v != "" {
			c.LogFormat = v
		}
	}
	if !changed("metrics-enabled") {
		if v, ok := parseBool(getenv("METRICS_ENABLED")); ok {
			c.Metrics.Enabled = v
		}
	}
	if !changed("metrics-addr") {
		if v := getenv("METRICS_ADDR"); v != "" {
			c.Metrics.Addr = v
		}
	}
}

func parseBool(s string) (bool, bool) {
	if s == "" {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}

// googleConfig returns the credential locations, honouring flag overrides.
func (c serveConfig) googleConfig() google.Config {
	gc := google.DefaultConfig()
	if c.CredentialsFile != "" {
		gc.CredentialsFile = c.CredentialsFile
	}
	if c.KeysFile != "" {
		gc.KeysFile = c.KeysFile
	}
	return gc
}

func (c serveConfig) validate() error {
	switch c.Transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", c.Transport)
	}
	switch logging.Format(c.LogFormat) {
	case logging.FormatJSON, logging.FormatText:
	default:
		return fmt.Errorf("unsupported log format: %s (supported: json, text)", c.LogFormat)
	}
	return nil
}

func runServe(ctx context.Context, cfg serveConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the protocol stream in stdio mode, so logs always go to stderr
	logger := logging.NewLogger(os.Stderr, logging.Format(cfg.LogFormat), cfg.Debug)
	slog.SetDefault(logger)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(flushCtx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	serverContext, err := newServerContext(shutdownCtx, cfg, provider, instrConfig, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv, sessions, err := buildMCPServer(serverContext, cfg.ReadOnly)
	if err != nil {
		return err
	}

	if cfg.ReadOnly {
		logger.Info("starting server in read-only mode", logging.Transport(cfg.Transport))
	} else {
		logger.Info("starting server with write operations enabled", logging.Transport(cfg.Transport))
	}

	// Start the appropriate server based on transport type
	switch cfg.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	default:
		metricsServer, err := startMetricsServer(cfg.Metrics, instrConfig.PrometheusEndpoint, provider, logger)
		if err != nil {
			return err
		}
		if metricsServer != nil {
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := metricsServer.Shutdown(stopCtx); err != nil {
					logger.Warn("error during metrics server shutdown", logging.Err(err))
				}
			}()
		}
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, sessions, cfg.HTTPAddr, logger)
	}
}

// newServerContext builds the shared context with lazily authenticated
// Google Tasks access and, when enabled, metrics and audit logging.
func newServerContext(ctx context.Context, cfg serveConfig, provider *instrumentation.Provider, instrConfig instrumentation.Config, logger *slog.Logger) (*server.ServerContext, error) {
	var metrics *instrumentation.Metrics
	opts := []server.Option{server.WithLogger(logger)}
	if provider != nil && provider.Enabled() {
		metrics = provider.Metrics()
		opts = append(opts,
			server.WithMetrics(metrics),
			server.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)),
		)
	}

	sc, err := server.NewServerContext(ctx, server.GoogleClientFactory(cfg.googleConfig(), metrics), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}

// buildMCPServer creates the MCP server with the task tools and resources
// registered and session tracking hooked in.
func buildMCPServer(sc *server.ServerContext, readOnly bool) (*mcpserver.MCPServer, *server.SessionTracker, error) {
	hooks := &mcpserver.Hooks{}
	sessions := server.NewSessionTracker(sc.Metrics(), sc.Logger())
	sessions.RegisterHooks(hooks)

	mcpSrv := mcpserver.NewMCPServer(serverName, version,
		mcpserver.WithHooks(hooks),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if err := registerAll(mcpSrv, hooks, sc, readOnly); err != nil {
		return nil, nil, err
	}
	return mcpSrv, sessions, nil
}

// registerAll registers all MCP tools and resources
func registerAll(mcpSrv *mcpserver.MCPServer, hooks *mcpserver.Hooks, sc *server.ServerContext, readOnly bool) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name: "Tasks tools",
			register: func() error {
				return tasks_tools.RegisterTasksTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Task resources",
			register: func() error {
				resources.RegisterTaskResources(mcpSrv, hooks, sc)
				return nil
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// startMetricsServer starts the dedicated metrics listener when enabled and
// waits until it is accepting connections. It returns nil when disabled.
func startMetricsServer(cfg MetricsConfig, path string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	if !cfg.Enabled || provider == nil || !provider.Enabled() {
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
		Path:                    path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.ListenAddr(), "path", path)
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, sessions *server.SessionTracker, addr string, logger *slog.Logger) error {
	healthChecker := server.NewHealthChecker(sc)
	healthChecker.SetSessionTracker(sessions)

	httpServer := server.NewHTTPServer(mcpSrv, healthChecker, sc.Metrics())

	logger.Info("streamable HTTP server starting",
		"addr", addr,
		"mcp_endpoint", server.MCPEndpointPath,
		"health_endpoints", []string{instrumentation.PathHealthz, instrumentation.PathReadyz})

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
