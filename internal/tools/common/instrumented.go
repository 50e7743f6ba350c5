package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"

	"github.com/alvinjchoi/gtasks-mcp/internal/instrumentation"
	"github.com/alvinjchoi/gtasks-mcp/internal/logging"
	"github.com/alvinjchoi/gtasks-mcp/internal/server"
)

// InstrumentedToolHandlerWithService wraps a tool handler with tracing,
// metrics and audit logging. The invocation is tagged with the Google service
// and operation it drives, and whether it only reads data.
//
// Google API metrics are recorded by the tasks client itself, per remote
// call, so they are not duplicated here.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithService("create", "tasks", "insert_task", false, sc, handler))
func InstrumentedToolHandlerWithService(
	toolName string,
	serviceName string,
	operation string,
	readOnly bool,
	sc *server.ServerContext,
	handler mcpserver.ToolHandlerFunc,
) mcpserver.ToolHandlerFunc {
	return instrument(toolName, serviceName, operation, readOnly, sc, handler)
}

func instrument(
	toolName, serviceName, operation string,
	readOnly bool,
	sc *server.ServerContext,
	handler mcpserver.ToolHandlerFunc,
) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		listID, taskID := TargetFromArgs(request.GetArguments())

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithReadOnly(readOnly).
			WithTaskList(listID).
			WithResource("task", taskID)
		if serviceName != "" {
			attrs.WithService(serviceName).WithOperation(operation)
		}

		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)
		defer span.End()

		// Get metrics and audit logger (may be nil if not configured)
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithReadOnly(readOnly).
			WithTarget(listID, taskID)
		if serviceName != "" {
			invocation.WithService(serviceName, operation)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			span.SetAttributes(attribute.String(instrumentation.SpanAttrStatus, instrumentation.StatusError))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
		}
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}
		logging.WithTool(sc.Logger(), toolName).Debug("tool call completed",
			logging.Status(status),
			logging.Duration(duration),
		)

		return result, err
	}
}
