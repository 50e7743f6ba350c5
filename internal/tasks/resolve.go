package tasks

import (
	"context"
	"log/slog"

	"github.com/alvinjchoi/gtasks-mcp/internal/logging"
)

// maxTaskLists is the page size used whenever all task lists are fetched.
const maxTaskLists = 100

// ResolveTaskListID returns the task list a write operation should target.
// A non-empty explicitID other than "@default" is returned as is, without
// contacting the service. Otherwise the first task list in service order is
// used, and ErrNoTaskLists is returned when the account has none.
func ResolveTaskListID(ctx context.Context, svc Service, explicitID string, logger *slog.Logger) (string, error) {
	if explicitID != "" && explicitID != DefaultTaskListID {
		return explicitID, nil
	}

	if logger == nil {
		logger = slog.Default()
	}

	lists, err := svc.ListTaskLists(ctx, maxTaskLists)
	if err != nil {
		return "", err
	}
	if len(lists) == 0 {
		return "", ErrNoTaskLists
	}

	chosen := lists[0]
	logger.InfoContext(ctx, "using default task list",
		logging.TaskList(chosen.ID),
		slog.String("title", chosen.Title))

	return chosen.ID, nil
}
