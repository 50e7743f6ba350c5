package tasks

import "context"

// Service is the set of remote operations the server performs against
// Google Tasks. Client implements it for the real API; tests use an
// in-memory fake.
type Service interface {
	// ListTaskLists returns up to maxResults task lists in service order.
	ListTaskLists(ctx context.Context, maxResults int64) ([]TaskList, error)

	// ListTasks returns one page of tasks from a list.
	ListTasks(ctx context.Context, taskListID string, opts ListOptions) (*TaskPage, error)

	GetTask(ctx context.Context, taskListID, taskID string) (*Task, error)
	InsertTask(ctx context.Context, taskListID string, in TaskInput) (*Task, error)
	UpdateTask(ctx context.Context, taskListID, taskID string, in TaskInput) (*Task, error)
	DeleteTask(ctx context.Context, taskListID, taskID string) error

	// ClearCompleted hides all completed tasks of a list.
	ClearCompleted(ctx context.Context, taskListID string) error
}
