package tasks_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alvinjchoi/gtasks-mcp/internal/logging"
	"github.com/alvinjchoi/gtasks-mcp/internal/server"
	"github.com/alvinjchoi/gtasks-mcp/internal/tasks"
	"github.com/alvinjchoi/gtasks-mcp/internal/tools/common"
)

// Prefixes for failures reported by each tool.
const (
	errSearching = "Error searching tasks"
	errListing   = "Error listing tasks"
	errCreating  = "Error creating task"
	errUpdating  = "Error updating task"
	errDeleting  = "Error deleting task"
	errClearing  = "Error clearing tasks"
)

// tasksClient returns the authenticated service. Authentication failures are
// reported without a tool prefix.
func tasksClient(ctx context.Context, sc *server.ServerContext) (tasks.Service, *mcp.CallToolResult) {
	svc, err := sc.TasksClient(ctx)
	if err != nil {
		return nil, common.ErrorResult("", err)
	}
	return svc, nil
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req, err := parseSearchRequest(request)
	if err != nil {
		return common.ErrorResult(errSearching, err), nil
	}

	svc, failure := tasksClient(ctx, sc)
	if failure != nil {
		return failure, nil
	}

	all, err := tasks.AggregateAll(ctx, svc, sc.Logger())
	if err != nil {
		sc.Logger().Error("search failed", logging.Tool(ToolSearch), logging.Err(err))
		return common.ErrorResult(errSearching, err), nil
	}

	matches := tasks.FilterTasks(all, req.Query)
	return mcp.NewToolResultText(fmt.Sprintf("Found %d tasks matching \"%s\":\n%s",
		len(matches), req.Query, tasks.FormatTasks(matches))), nil
}

func handleList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	// The cursor is accepted for compatibility; the tool always returns
	// every task.
	_ = parseListRequest(request)

	svc, failure := tasksClient(ctx, sc)
	if failure != nil {
		return failure, nil
	}

	all, err := tasks.AggregateAll(ctx, svc, sc.Logger())
	if err != nil {
		sc.Logger().Error("list failed", logging.Tool(ToolList), logging.Err(err))
		return common.ErrorResult(errListing, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d tasks:\n%s", len(all), tasks.FormatTasks(all))), nil
}

func handleCreate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req, err := parseCreateRequest(request)
	if err != nil {
		return common.ErrorResult(errCreating, err), nil
	}

	svc, failure := tasksClient(ctx, sc)
	if failure != nil {
		return failure, nil
	}

	listID, err := tasks.ResolveTaskListID(ctx, svc, req.TaskListID, sc.Logger())
	if err != nil {
		return common.ErrorResult(errCreating, err), nil
	}

	created, err := svc.InsertTask(ctx, listID, req.Input)
	if err != nil {
		sc.Logger().Error("create failed", logging.Tool(ToolCreate), logging.TaskList(listID), logging.Err(err))
		return common.ErrorResult(errCreating, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Task created: %s", created.Title)), nil
}

func handleUpdate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req, err := parseUpdateRequest(request)
	if err != nil {
		return common.ErrorResult(errUpdating, err), nil
	}

	svc, failure := tasksClient(ctx, sc)
	if failure != nil {
		return failure, nil
	}

	listID, err := tasks.ResolveTaskListID(ctx, svc, req.TaskListID, sc.Logger())
	if err != nil {
		return common.ErrorResult(errUpdating, err), nil
	}

	updated, err := svc.UpdateTask(ctx, listID, req.TaskID, req.Input)
	if err != nil {
		sc.Logger().Error("update failed", logging.Tool(ToolUpdate),
			logging.TaskList(listID), logging.TaskID(req.TaskID), logging.Err(err))
		return common.ErrorResult(errUpdating, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Task updated: %s", updated.Title)), nil
}

func handleDelete(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req, err := parseDeleteRequest(request)
	if err != nil {
		return common.ErrorResult(errDeleting, err), nil
	}

	svc, failure := tasksClient(ctx, sc)
	if failure != nil {
		return failure, nil
	}

	listID, err := tasks.ResolveTaskListID(ctx, svc, req.TaskListID, sc.Logger())
	if err != nil {
		return common.ErrorResult(errDeleting, err), nil
	}

	if err := svc.DeleteTask(ctx, listID, req.TaskID); err != nil {
		sc.Logger().Error("delete failed", logging.Tool(ToolDelete),
			logging.TaskList(listID), logging.TaskID(req.TaskID), logging.Err(err))
		return common.ErrorResult(errDeleting, err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted", req.TaskID)), nil
}

func handleClear(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req := parseClearRequest(request)

	svc, failure := tasksClient(ctx, sc)
	if failure != nil {
		return failure, nil
	}

	listID, err := tasks.ResolveTaskListID(ctx, svc, req.TaskListID, sc.Logger())
	if err != nil {
		return common.ErrorResult(errClearing, err), nil
	}

	if err := svc.ClearCompleted(ctx, listID); err != nil {
		sc.Logger().Error("clear failed", logging.Tool(ToolClear), logging.TaskList(listID), logging.Err(err))
		return common.ErrorResult(errClearing, err), nil
	}

	return mcp.NewToolResultText("Cleared all completed tasks from list"), nil
}
