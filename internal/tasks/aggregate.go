package tasks

import (
	"context"
	"log/slog"

	"github.com/alvinjchoi/gtasks-mcp/internal/logging"
)

const (
	// pageSize is the per-list page size for paginated listings.
	pageSize = 10

	// allTasksPageSize is the per-list page size when fetching everything.
	allTasksPageSize = 100
)

// AggregatePage lists one page of tasks from every task list.
//
// The same cursor is sent as page token to each list, and the returned
// cursor is the token of the last list that reported one. Tasks are ordered
// by list, then by service order within a list. Any failure aborts the
// whole page.
func AggregatePage(ctx context.Context, svc Service, cursor string) ([]Task, string, error) {
	lists, err := svc.ListTaskLists(ctx, maxTaskLists)
	if err != nil {
		return nil, "", err
	}

	var (
		all  []Task
		next string
	)
	for _, list := range lists {
		page, err := svc.ListTasks(ctx, list.ID, ListOptions{
			MaxResults: pageSize,
			PageToken:  cursor,
		})
		if err != nil {
			return nil, "", err
		}

		all = append(all, page.Items...)
		if page.NextPageToken != "" {
			next = page.NextPageToken
		}
	}

	return all, next, nil
}

// AggregateAll fetches tasks from every task list without pagination.
// A list that fails is logged and skipped; only a failure to enumerate the
// task lists themselves is returned.
func AggregateAll(ctx context.Context, svc Service, logger *slog.Logger) ([]Task, error) {
	if logger == nil {
		logger = slog.Default()
	}

	lists, err := svc.ListTaskLists(ctx, maxTaskLists)
	if err != nil {
		return nil, err
	}

	var all []Task
	for _, list := range lists {
		if list.ID == "" {
			continue
		}

		page, err := svc.ListTasks(ctx, list.ID, ListOptions{MaxResults: allTasksPageSize})
		if err != nil {
			logger.ErrorContext(ctx, "failed to fetch tasks for list",
				logging.TaskList(list.ID),
				logging.Err(err))
			continue
		}

		all = append(all, page.Items...)
	}

	return all, nil
}
