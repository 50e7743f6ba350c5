package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alvinjchoi/gtasks-mcp/internal/instrumentation"
)

// SessionTracker keeps track of connected MCP sessions and feeds the
// active sessions gauge. It is attached to the MCP server through hooks.
type SessionTracker struct {
	sessions map[string]time.Time // session ID -> registration time
	mu       sync.RWMutex
	metrics  *instrumentation.Metrics
	logger   *slog.Logger
}

// NewSessionTracker creates a tracker. metrics may be nil.
func NewSessionTracker(metrics *instrumentation.Metrics, logger *slog.Logger) *SessionTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionTracker{
		sessions: make(map[string]time.Time),
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterHooks wires the tracker into the MCP server lifecycle hooks.
func (t *SessionTracker) RegisterHooks(hooks *mcpserver.Hooks) {
	hooks.AddOnRegisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		t.Add(ctx, session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		t.Remove(ctx, session.SessionID())
	})
}

// Add records a new session. Re-adding a known session is a no-op.
func (t *SessionTracker) Add(ctx context.Context, sessionID string) {
	t.mu.Lock()
	if _, ok := t.sessions[sessionID]; ok {
		t.mu.Unlock()
		return
	}
	t.sessions[sessionID] = time.Now()
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.IncrementActiveSessions(ctx)
	}
	t.logger.Debug("session registered", slog.String("session_id", sessionID))
}

// Remove forgets a session. Unknown sessions are ignored.
func (t *SessionTracker) Remove(ctx context.Context, sessionID string) {
	t.mu.Lock()
	registered, ok := t.sessions[sessionID]
	if ok {
		delete(t.sessions, sessionID)
	}
	t.mu.Unlock()

	if !ok {
		return
	}
	if t.metrics != nil {
		t.metrics.DecrementActiveSessions(ctx)
	}
	t.logger.Debug("session unregistered",
		slog.String("session_id", sessionID),
		slog.Duration("lifetime", time.Since(registered)))
}

// Count returns the number of active sessions.
func (t *SessionTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
