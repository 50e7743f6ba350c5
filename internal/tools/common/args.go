package common

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Argument names shared by the task tools.
const (
	ArgTaskListID = "taskListId"
	ArgTaskID     = "id"
)

// TargetFromArgs extracts the task list and task ids a tool call addresses.
// Missing or non-string values yield empty strings.
func TargetFromArgs(args map[string]any) (taskListID, taskID string) {
	taskListID, _ = args[ArgTaskListID].(string)
	taskID, _ = args[ArgTaskID].(string)
	return taskListID, taskID
}

// ErrorResult converts a failure into an error-tagged tool result whose text
// is prefix followed by the failure message.
func ErrorResult(prefix string, err error) *mcp.CallToolResult {
	if prefix == "" {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
}
