package tasks

import "errors"

var (
	// ErrNoTaskLists is returned when a default list is needed but the
	// account has no task lists.
	ErrNoTaskLists = errors.New("no task lists found in your Google Tasks account")

	// ErrMissingTitle is returned by create without a title.
	ErrMissingTitle = errors.New("task title is required")

	// ErrMissingID is returned by update and delete without a task id.
	ErrMissingID = errors.New("task ID is required")

	// ErrMissingQuery is returned by search without a query.
	ErrMissingQuery = errors.New("search query is required")

	// ErrTaskNotFound is returned when no task list contains the requested task.
	ErrTaskNotFound = errors.New("task not found")
)

// RemoteError wraps a failure reported by the Tasks service. Op names the
// call that failed; the message is the service's own, unchanged.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}
