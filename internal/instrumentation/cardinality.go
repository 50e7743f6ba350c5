package instrumentation

// Cardinality management helpers for metrics.
// Label values that come from clients (request paths) are mapped onto a
// fixed set before they are recorded.

// Known HTTP endpoints served by gtasks-mcp.
const (
	PathMCP            = "/mcp"
	PathMetrics        = "/metrics"
	PathHealthz        = "/healthz"
	PathReadyz         = "/readyz"
	PathHealthDetailed = "/healthz/detailed"

	pathOther = "other"
)

var knownPaths = map[string]bool{
	PathMCP:            true,
	PathMetrics:        true,
	PathHealthz:        true,
	PathReadyz:         true,
	PathHealthDetailed: true,
}

// NormalizePath returns path if it is one of the server's endpoints and
// "other" otherwise.
//
// Example:
//
//	NormalizePath("/mcp")          // "/mcp"
//	NormalizePath("/wp-login.php") // "other"
func NormalizePath(path string) string {
	if knownPaths[path] {
		return path
	}
	return pathOther
}

// Operation names for Google Tasks API metrics and spans.
// Status and Service constants are defined in config.go.
const (
	OperationListTaskLists  = "list_tasklists"
	OperationListTasks      = "list_tasks"
	OperationGetTask        = "get_task"
	OperationInsertTask     = "insert_task"
	OperationUpdateTask     = "update_task"
	OperationDeleteTask     = "delete_task"
	OperationClearCompleted = "clear_completed"
)
