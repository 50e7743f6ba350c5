package resources

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alvinjchoi/gtasks-mcp/internal/instrumentation"
	"github.com/alvinjchoi/gtasks-mcp/internal/logging"
	"github.com/alvinjchoi/gtasks-mcp/internal/server"
	"github.com/alvinjchoi/gtasks-mcp/internal/tasks"
)

const (
	// URIScheme prefixes every task resource URI.
	URIScheme = "gtasks:///"

	// URITemplate is the resource template advertised to clients.
	URITemplate = URIScheme + "{taskId}"

	mimeTypeText = "text/plain"

	// metaErrorKey carries a listing failure in the result metadata.
	metaErrorKey = "error"
)

// TaskURI returns the resource URI of a task.
func TaskURI(taskID string) string {
	return URIScheme + taskID
}

// TaskIDFromURI extracts the task id from a resource URI.
func TaskIDFromURI(uri string) (string, error) {
	id, ok := strings.CutPrefix(uri, URIScheme)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("invalid task resource URI %q", uri)
	}
	return id, nil
}

// RegisterTaskResources registers the task resource template on s and the
// listing hook on hooks. hooks must be the ones s was created with.
func RegisterTaskResources(s *mcpserver.MCPServer, hooks *mcpserver.Hooks, sc *server.ServerContext) {
	template := mcp.NewResourceTemplate(URITemplate, "Google Task",
		mcp.WithTemplateDescription("A single Google task, rendered as plain text"),
		mcp.WithTemplateMIMEType(mimeTypeText),
	)
	s.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return ReadTaskResource(ctx, sc, request.Params.URI)
	})

	hooks.AddAfterListResources(ListResourcesHook(sc))
}

// ReadTaskResource renders the task behind uri. Lookup and authentication
// failures are returned as errors.
func ReadTaskResource(ctx context.Context, sc *server.ServerContext, uri string) ([]mcp.ResourceContents, error) {
	taskID, err := TaskIDFromURI(uri)
	if err != nil {
		return nil, err
	}

	ctx, span := instrumentation.StartResourceSpan(ctx, "read",
		instrumentation.NewSpanAttributeBuilder().WithResource("task", taskID).Build()...)
	defer span.End()

	svc, err := sc.TasksClient(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	task, err := tasks.ReadTask(ctx, svc, taskID)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		sc.Logger().Debug("task resource read failed", logging.TaskID(taskID), logging.Err(err))
		return nil, err
	}

	instrumentation.SetSpanSuccess(span)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeTypeText,
			Text:     tasks.FormatTaskDetail(*task),
		},
	}, nil
}

// ListTaskResources returns one page of task resources across all task
// lists. cursor and the returned next cursor are raw service page tokens.
func ListTaskResources(ctx context.Context, svc tasks.Service, cursor string) ([]mcp.Resource, string, error) {
	items, next, err := tasks.AggregatePage(ctx, svc, cursor)
	if err != nil {
		return nil, "", err
	}

	resources := make([]mcp.Resource, 0, len(items))
	for _, t := range items {
		resources = append(resources, mcp.NewResource(TaskURI(t.ID), t.Title,
			mcp.WithMIMEType(mimeTypeText),
		))
	}
	return resources, next, nil
}

// ListResourcesHook returns a hook that replaces the server's static
// resource listing with the account's tasks. Failures never fail the
// request: the result is emptied and the message is put in _meta.error.
func ListResourcesHook(sc *server.ServerContext) func(ctx context.Context, id any, request *mcp.ListResourcesRequest, result *mcp.ListResourcesResult) {
	return func(ctx context.Context, id any, request *mcp.ListResourcesRequest, result *mcp.ListResourcesResult) {
		if result == nil {
			return
		}

		ctx, span := instrumentation.StartResourceSpan(ctx, "list")
		defer span.End()

		fail := func(err error) {
			instrumentation.SetSpanError(span, err)
			sc.Logger().Warn("listing task resources failed", logging.Err(err))
			result.Resources = []mcp.Resource{}
			result.NextCursor = ""
			if result.Meta == nil {
				result.Meta = &mcp.Meta{}
			}
			if result.Meta.AdditionalFields == nil {
				result.Meta.AdditionalFields = make(map[string]any)
			}
			result.Meta.AdditionalFields[metaErrorKey] = err.Error()
		}

		var cursor mcp.Cursor
		if request != nil {
			cursor = request.Params.Cursor
		}
		pageToken, err := DecodeCursor(cursor)
		if err != nil {
			fail(err)
			return
		}

		svc, err := sc.TasksClient(ctx)
		if err != nil {
			fail(err)
			return
		}

		resources, next, err := ListTaskResources(ctx, svc, pageToken)
		if err != nil {
			fail(err)
			return
		}

		result.Resources = resources
		result.NextCursor = EncodeCursor(next)
		instrumentation.SetSpanSuccess(span)
		sc.Logger().Debug("listed task resources",
			slog.Int("count", len(resources)),
			slog.Bool("has_more", next != ""))
	}
}

// EncodeCursor wraps a service page token for clients. An empty token
// yields an empty cursor.
func EncodeCursor(pageToken string) mcp.Cursor {
	if pageToken == "" {
		return ""
	}
	return mcp.Cursor(base64.StdEncoding.EncodeToString([]byte(pageToken)))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(cursor mcp.Cursor) (string, error) {
	if cursor == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(string(cursor))
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}
	return string(raw), nil
}
