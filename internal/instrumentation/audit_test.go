package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrsToMap(attrs []slog.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value.String()
	}
	return m
}

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation("search")

	assert.Equal(t, "search", ti.Tool)
	assert.False(t, ti.StartTime.IsZero())

	ti.CompleteSuccess()

	assert.True(t, ti.Success)
	assert.GreaterOrEqual(t, int64(ti.Duration), int64(0))
	assert.Empty(t, ti.Error)
	assert.Equal(t, StatusSuccess, ti.Status())
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation("create").CompleteWithError(errors.New("Task list not found."))

	assert.False(t, ti.Success)
	assert.Equal(t, "Task list not found.", ti.Error)
	assert.Equal(t, StatusError, ti.Status())
}

func TestToolInvocation_Complete_NilError(t *testing.T) {
	ti := NewToolInvocation("clear").Complete(false, nil)
	assert.False(t, ti.Success)
	assert.Empty(t, ti.Error)
}

func TestToolInvocation_MethodChaining(t *testing.T) {
	ti := NewToolInvocation("delete").
		WithService(ServiceTasks, "delete").
		WithTarget("L1", "t1").
		WithReadOnly(false).
		CompleteSuccess()

	assert.Equal(t, ServiceTasks, ti.ServiceName)
	assert.Equal(t, "delete", ti.Operation)
	assert.Equal(t, "L1", ti.TaskListID)
	assert.Equal(t, "t1", ti.TaskID)
	assert.False(t, ti.ReadOnly)
	assert.True(t, ti.Success)
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation("update").
		WithService(ServiceTasks, "update").
		WithTarget("L1", "t1").
		CompleteWithError(errors.New("boom"))
	ti.TraceID = "abc123"

	t.Run("without arguments", func(t *testing.T) {
		m := attrsToMap(ti.LogAttrs(false))
		assert.Equal(t, "update", m["tool"])
		assert.Equal(t, ServiceTasks, m["service"])
		assert.Equal(t, "boom", m["error"])
		assert.Equal(t, "abc123", m["trace_id"])
		assert.NotContains(t, m, "task_list_id")
		assert.NotContains(t, m, "task_id")
	})

	t.Run("with arguments", func(t *testing.T) {
		m := attrsToMap(ti.LogAttrs(true))
		assert.Equal(t, "L1", m["task_list_id"])
		assert.Equal(t, "t1", m["task_id"])
	})
}

func TestToolInvocation_LogAttrs_MinimalFields(t *testing.T) {
	ti := NewToolInvocation("list").CompleteSuccess()

	m := attrsToMap(ti.LogAttrs(true))
	assert.Len(t, m, 4) // tool, duration, success, read_only
	assert.NotContains(t, m, "error")
	assert.NotContains(t, m, "service")
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation("list").WithSpanContext(context.Background())
	assert.Empty(t, ti.TraceID)
	assert.Empty(t, ti.SpanID)
}

func TestNewAuditLoggerWithConfig(t *testing.T) {
	al := NewAuditLoggerWithConfig(nil, AuditLoggingConfig{Enabled: true})
	assert.Same(t, slog.Default(), al.logger)
	assert.True(t, al.enabled)
	assert.False(t, al.includeArguments)
	assert.Equal(t, slog.LevelInfo, al.level)

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	al = NewAuditLoggerWithConfig(logger, AuditLoggingConfig{IncludeArguments: true, LogLevel: "warn"})
	assert.Same(t, logger, al.logger)
	assert.False(t, al.enabled)
	assert.True(t, al.includeArguments)
	assert.Equal(t, slog.LevelWarn, al.level)
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{
		Enabled:          true,
		IncludeArguments: true,
	})

	al.LogToolInvocation(NewToolInvocation("create").WithTarget("L1", "").CompleteSuccess())
	al.LogToolInvocation(NewToolInvocation("delete").CompleteWithError(errors.New("denied")))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "tool_executed", first["msg"])
	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "L1", first["task_list_id"])

	assert.Equal(t, "tool_failed", second["msg"])
	assert.Equal(t, "WARN", second["level"])
	assert.Equal(t, "denied", second["error"])
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})

	al.LogToolInvocation(NewToolInvocation("list").CompleteSuccess())
	assert.Zero(t, buf.Len())
}

func TestAuditLogger_IncludeArguments(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: true})
	al.LogToolInvocation(NewToolInvocation("delete").WithTarget("L1", "t1").CompleteSuccess())
	assert.NotContains(t, buf.String(), `"task_id"`)

	buf.Reset()
	al = NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: true, IncludeArguments: true})
	al.LogToolInvocation(NewToolInvocation("delete").WithTarget("L1", "t1").CompleteSuccess())
	assert.Contains(t, buf.String(), `"task_id":"t1"`)
}

func TestAuditLogger_LogLevel(t *testing.T) {
	tests := []struct {
		level       string
		wantSuccess string
		wantFailure string
	}{
		{level: "", wantSuccess: "INFO", wantFailure: "WARN"},
		{level: "debug", wantSuccess: "DEBUG", wantFailure: "WARN"},
		{level: "error", wantSuccess: "ERROR", wantFailure: "ERROR"},
		{level: "bogus", wantSuccess: "INFO", wantFailure: "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			al := NewAuditLoggerWithConfig(slog.New(handler), AuditLoggingConfig{Enabled: true, LogLevel: tt.level})

			al.LogToolInvocation(NewToolInvocation("list").CompleteSuccess())
			al.LogToolInvocation(NewToolInvocation("list").CompleteWithError(errors.New("boom")))

			lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
			require.Len(t, lines, 2)

			var ok, failed map[string]any
			require.NoError(t, json.Unmarshal(lines[0], &ok))
			require.NoError(t, json.Unmarshal(lines[1], &failed))
			assert.Equal(t, tt.wantSuccess, ok["level"])
			assert.Equal(t, tt.wantFailure, failed["level"])
		})
	}
}
