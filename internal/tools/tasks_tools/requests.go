package tasks_tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alvinjchoi/gtasks-mcp/internal/tasks"
)

// Typed arguments for each tool. Parsing happens before any remote call so
// that a bad request never reaches the Tasks service.

type searchRequest struct {
	Query      string
	TaskListID string
}

type listRequest struct {
	Cursor string
}

type createRequest struct {
	TaskListID string
	Input      tasks.TaskInput
}

type updateRequest struct {
	TaskListID string
	TaskID     string
	URI        string
	Input      tasks.TaskInput
}

type deleteRequest struct {
	TaskListID string
	TaskID     string
}

type clearRequest struct {
	TaskListID string
}

func parseSearchRequest(req mcp.CallToolRequest) (searchRequest, error) {
	r := searchRequest{
		Query:      req.GetString("query", ""),
		TaskListID: req.GetString("taskListId", ""),
	}
	if r.Query == "" {
		return r, tasks.ErrMissingQuery
	}
	return r, nil
}

func parseListRequest(req mcp.CallToolRequest) listRequest {
	return listRequest{Cursor: req.GetString("cursor", "")}
}

func parseCreateRequest(req mcp.CallToolRequest) (createRequest, error) {
	r := createRequest{
		TaskListID: req.GetString("taskListId", ""),
		Input: tasks.TaskInput{
			Title:  req.GetString("title", ""),
			Notes:  req.GetString("notes", ""),
			Status: req.GetString("status", tasks.StatusNeedsAction),
			Due:    req.GetString("due", ""),
		},
	}
	if r.Input.Title == "" {
		return r, tasks.ErrMissingTitle
	}
	if err := validateStatus(r.Input.Status); err != nil {
		return r, err
	}
	return r, nil
}

func parseUpdateRequest(req mcp.CallToolRequest) (updateRequest, error) {
	r := updateRequest{
		TaskListID: req.GetString("taskListId", ""),
		TaskID:     req.GetString("id", ""),
		URI:        req.GetString("uri", ""),
		Input: tasks.TaskInput{
			Title:  req.GetString("title", ""),
			Notes:  req.GetString("notes", ""),
			Status: req.GetString("status", ""),
			Due:    req.GetString("due", ""),
		},
	}
	if r.TaskID == "" {
		return r, tasks.ErrMissingID
	}
	if err := validateStatus(r.Input.Status); err != nil {
		return r, err
	}
	return r, nil
}

func parseDeleteRequest(req mcp.CallToolRequest) (deleteRequest, error) {
	r := deleteRequest{
		TaskListID: req.GetString("taskListId", ""),
		TaskID:     req.GetString("id", ""),
	}
	if r.TaskID == "" {
		return r, tasks.ErrMissingID
	}
	return r, nil
}

func parseClearRequest(req mcp.CallToolRequest) clearRequest {
	return clearRequest{TaskListID: req.GetString("taskListId", "")}
}

// validateStatus accepts an empty status, which leaves it unset.
func validateStatus(status string) error {
	switch status {
	case "", tasks.StatusNeedsAction, tasks.StatusCompleted:
		return nil
	default:
		return fmt.Errorf("invalid status %q: must be %s or %s", status, tasks.StatusNeedsAction, tasks.StatusCompleted)
	}
}
