package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alvinjchoi/gtasks-mcp/internal/google"
	"github.com/alvinjchoi/gtasks-mcp/internal/instrumentation"
	"github.com/alvinjchoi/gtasks-mcp/internal/logging"
	"github.com/alvinjchoi/gtasks-mcp/internal/tasks"
)

// ClientFactory builds an authenticated Tasks service. The returned source
// names where the credentials came from and is used for metrics only.
type ClientFactory func(ctx context.Context) (svc tasks.Service, source string, err error)

// GoogleClientFactory returns a ClientFactory that resolves credentials with
// cfg and talks to the real Google Tasks API.
func GoogleClientFactory(cfg google.Config, metrics *instrumentation.Metrics) ClientFactory {
	return func(ctx context.Context) (tasks.Service, string, error) {
		ts, source, err := google.ResolveTokenSource(ctx, cfg)
		if err != nil {
			return nil, source, err
		}

		client, err := tasks.NewClient(ctx, google.NewHTTPClient(ts), metrics)
		if err != nil {
			return nil, source, err
		}
		return client, source, nil
	}
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithMetrics records auth initialization and tool metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger sets the audit logger used by tool handlers.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.auditLogger = al }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// ServerContext holds the state shared by all MCP requests: the lazily
// authenticated Tasks client and the observability plumbing.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	factory     ClientFactory
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger

	initGroup singleflight.Group

	mu       sync.RWMutex
	client   tasks.Service
	shutdown bool
}

// NewServerContext creates a new server context. The Tasks client is not
// built until the first call to TasksClient.
func NewServerContext(ctx context.Context, factory ClientFactory, opts ...Option) (*ServerContext, error) {
	if factory == nil {
		return nil, errors.New("client factory is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// TasksClient returns the authenticated Tasks service, building it on first
// use. Concurrent callers share a single initialization attempt. A failed
// attempt is not remembered, so the next call tries again.
func (sc *ServerContext) TasksClient(ctx context.Context) (tasks.Service, error) {
	sc.mu.RLock()
	client, shutdown := sc.client, sc.shutdown
	sc.mu.RUnlock()

	if shutdown {
		return nil, errors.New("server is shutting down")
	}
	if client != nil {
		return client, nil
	}

	// The client is cached for the life of the process, so it must not
	// inherit the cancellation of the request that happens to build it.
	initCtx := context.WithoutCancel(ctx)

	ch := sc.initGroup.DoChan("tasks", func() (interface{}, error) {
		// Another caller may have finished while we waited for the lock.
		sc.mu.RLock()
		existing := sc.client
		sc.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}
		return sc.initialize(initCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(tasks.Service), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-sc.ctx.Done():
		return nil, errors.New("server is shutting down")
	}
}

func (sc *ServerContext) initialize(ctx context.Context) (tasks.Service, error) {
	ctx, span := instrumentation.StartSpan(ctx, "auth.initialize")
	defer span.End()

	start := time.Now()
	svc, source, err := sc.factory(ctx)

	result := instrumentation.AuthResultSuccess
	switch {
	case errors.Is(err, google.ErrAuthenticationRequired):
		result = instrumentation.AuthResultMissing
	case err != nil:
		result = instrumentation.AuthResultFailure
	}
	if sc.metrics != nil {
		sc.metrics.RecordAuthInitialization(ctx, result, source)
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
		sc.logger.Warn("tasks client initialization failed",
			logging.Operation("auth.initialize"),
			logging.Status(result),
			logging.Err(err))
		return nil, err
	}

	instrumentation.AddSpanEvent(span, "authenticated")
	instrumentation.SetSpanSuccess(span)
	sc.logger.Info("tasks client initialized",
		slog.String("source", source),
		logging.Duration(time.Since(start)))

	sc.mu.Lock()
	sc.client = svc
	sc.mu.Unlock()

	return svc, nil
}

// SetTasksClient installs a ready client, bypassing credential resolution.
func (sc *ServerContext) SetTasksClient(svc tasks.Service) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.client = svc
}

// IsAuthenticated reports whether a Tasks client has been built.
func (sc *ServerContext) IsAuthenticated() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.client != nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}

// String is used in debug logs.
func (sc *ServerContext) String() string {
	return fmt.Sprintf("ServerContext{authenticated=%t, shutdown=%t}", sc.IsAuthenticated(), sc.IsShutdown())
}
