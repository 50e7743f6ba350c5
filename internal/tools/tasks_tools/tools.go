package tasks_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alvinjchoi/gtasks-mcp/internal/instrumentation"
	"github.com/alvinjchoi/gtasks-mcp/internal/server"
	"github.com/alvinjchoi/gtasks-mcp/internal/tasks"
	"github.com/alvinjchoi/gtasks-mcp/internal/tools/common"
)

// Tool names.
const (
	ToolSearch = "search"
	ToolList   = "list"
	ToolCreate = "create"
	ToolUpdate = "update"
	ToolDelete = "delete"
	ToolClear  = "clear"
)

// RegisterTasksTools registers the task tools with the MCP server. search and
// list are always available; the tools that modify tasks are skipped when
// readOnly is set.
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if s == nil || sc == nil {
		return fmt.Errorf("server and server context are required")
	}

	registerReadTools(s, sc)

	if !readOnly {
		registerWriteTools(s, sc)
	}

	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	searchTool := mcp.NewTool(ToolSearch,
		mcp.WithDescription("Search for a task in Google Tasks"),
		mcp.WithTitleAnnotation("Search Tasks"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query, matched case-insensitively against task titles and notes"),
		),
		mcp.WithString("taskListId",
			mcp.Description("Task list ID (currently every list is searched)"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandlerWithService(ToolSearch,
		instrumentation.ServiceTasks, instrumentation.OperationListTasks, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearch(ctx, request, sc)
		}))

	listTool := mcp.NewTool(ToolList,
		mcp.WithDescription("List all tasks in Google Tasks"),
		mcp.WithTitleAnnotation("List Tasks"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("cursor",
			mcp.Description("Cursor for pagination"),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandlerWithService(ToolList,
		instrumentation.ServiceTasks, instrumentation.OperationListTasks, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleList(ctx, request, sc)
		}))
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createTool := mcp.NewTool(ToolCreate,
		mcp.WithDescription("Create a new task in Google Tasks"),
		mcp.WithTitleAnnotation("Create Task"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("taskListId",
			mcp.Description("Task list ID (defaults to the first task list)"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title"),
		),
		mcp.WithString("notes",
			mcp.Description("Task notes"),
		),
		mcp.WithString("status",
			mcp.Enum(tasks.StatusNeedsAction, tasks.StatusCompleted),
			mcp.Description("Task status (needsAction or completed, default needsAction)"),
		),
		mcp.WithString("due",
			mcp.Description("Due date (RFC 3339 timestamp)"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandlerWithService(ToolCreate,
		instrumentation.ServiceTasks, instrumentation.OperationInsertTask, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreate(ctx, request, sc)
		}))

	updateTool := mcp.NewTool(ToolUpdate,
		mcp.WithDescription("Update a task in Google Tasks"),
		mcp.WithTitleAnnotation("Update Task"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("taskListId",
			mcp.Description("Task list ID (defaults to the first task list)"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithString("uri",
			mcp.Description("Task URI"),
		),
		mcp.WithString("title",
			mcp.Description("Task title"),
		),
		mcp.WithString("notes",
			mcp.Description("Task notes"),
		),
		mcp.WithString("status",
			mcp.Enum(tasks.StatusNeedsAction, tasks.StatusCompleted),
			mcp.Description("Task status (needsAction or completed)"),
		),
		mcp.WithString("due",
			mcp.Description("Due date (RFC 3339 timestamp)"),
		),
	)
	s.AddTool(updateTool, common.InstrumentedToolHandlerWithService(ToolUpdate,
		instrumentation.ServiceTasks, instrumentation.OperationUpdateTask, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdate(ctx, request, sc)
		}))

	deleteTool := mcp.NewTool(ToolDelete,
		mcp.WithDescription("Delete a task in Google Tasks"),
		mcp.WithTitleAnnotation("Delete Task"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("taskListId",
			mcp.Description("Task list ID (defaults to the first task list)"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithService(ToolDelete,
		instrumentation.ServiceTasks, instrumentation.OperationDeleteTask, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDelete(ctx, request, sc)
		}))

	clearTool := mcp.NewTool(ToolClear,
		mcp.WithDescription("Clear completed tasks from a Google Tasks task list"),
		mcp.WithTitleAnnotation("Clear Completed Tasks"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("taskListId",
			mcp.Description("Task list ID (defaults to the first task list)"),
		),
	)
	s.AddTool(clearTool, common.InstrumentedToolHandlerWithService(ToolClear,
		instrumentation.ServiceTasks, instrumentation.OperationClearCompleted, false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClear(ctx, request, sc)
		}))
}
