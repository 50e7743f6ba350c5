package tasks

import (
	"context"
	"strings"
)

// ReadTask looks a task up by id across all task lists.
// Lists are tried in service order and a failed get moves on to the next
// list. ErrTaskNotFound is returned when no list has the task.
func ReadTask(ctx context.Context, svc Service, taskID string) (*Task, error) {
	lists, err := svc.ListTaskLists(ctx, maxTaskLists)
	if err != nil {
		return nil, err
	}

	for _, list := range lists {
		task, err := svc.GetTask(ctx, list.ID, taskID)
		if err != nil || task == nil {
			continue
		}
		return task, nil
	}

	return nil, ErrTaskNotFound
}

// FilterTasks keeps the tasks whose title or notes contain query,
// ignoring case. Order is preserved.
func FilterTasks(all []Task, query string) []Task {
	needle := strings.ToLower(query)

	var matched []Task
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Notes), needle) {
			matched = append(matched, t)
		}
	}
	return matched
}
