// Package taskstest provides an in-memory tasks.Service for tests.
package taskstest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alvinjchoi/gtasks-mcp/internal/tasks"
)

// ErrNotFound is returned by the fake when a task or list does not exist.
var ErrNotFound = errors.New("not found")

// Call records a single invocation of the fake.
type Call struct {
	Method  string
	ListID  string
	TaskID  string
	Options tasks.ListOptions
	Input   tasks.TaskInput
}

// FakeService is an in-memory implementation of tasks.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	lists  []tasks.TaskList
	tasks  map[string][]tasks.Task // listID -> tasks
	nextID int

	// NextPageTokens is returned as the page token for a list's task listings.
	NextPageTokens map[string]string

	// Error injection for testing
	ListListsErr  error
	ListTasksErr  map[string]error // listID -> error
	GetTaskErr    map[string]error // listID -> error
	InsertTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	ClearErr      error

	calls []Call
}

var _ tasks.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService with no task lists.
func NewFakeService() *FakeService {
	return &FakeService{
		tasks:          make(map[string][]tasks.Task),
		NextPageTokens: make(map[string]string),
		ListTasksErr:   make(map[string]error),
		GetTaskErr:     make(map[string]error),
	}
}

// AddList appends a task list.
func (f *FakeService) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, tasks.TaskList{ID: id, Title: title})
}

// AddTask appends a task to a list.
func (f *FakeService) AddTask(listID string, task tasks.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = append(f.tasks[listID], task)
}

// Tasks returns a copy of the tasks currently stored in a list.
func (f *FakeService) Tasks(listID string) []tasks.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tasks.Task(nil), f.tasks[listID]...)
}

// Calls returns the recorded calls in order.
func (f *FakeService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns how many times method was called.
func (f *FakeService) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *FakeService) record(c Call) {
	f.calls = append(f.calls, c)
}

// ListTaskLists implements tasks.Service.
func (f *FakeService) ListTaskLists(ctx context.Context, maxResults int64) ([]tasks.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "ListTaskLists", Options: tasks.ListOptions{MaxResults: maxResults}})

	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}

	lists := f.lists
	if maxResults > 0 && int64(len(lists)) > maxResults {
		lists = lists[:maxResults]
	}
	return append([]tasks.TaskList(nil), lists...), nil
}

// ListTasks implements tasks.Service.
func (f *FakeService) ListTasks(ctx context.Context, taskListID string, opts tasks.ListOptions) (*tasks.TaskPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "ListTasks", ListID: taskListID, Options: opts})

	if err := f.ListTasksErr[taskListID]; err != nil {
		return nil, err
	}

	items := f.tasks[taskListID]
	if opts.MaxResults > 0 && int64(len(items)) > opts.MaxResults {
		items = items[:opts.MaxResults]
	}

	return &tasks.TaskPage{
		Items:         append([]tasks.Task(nil), items...),
		NextPageToken: f.NextPageTokens[taskListID],
	}, nil
}

// GetTask implements tasks.Service.
func (f *FakeService) GetTask(ctx context.Context, taskListID, taskID string) (*tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "GetTask", ListID: taskListID, TaskID: taskID})

	if err := f.GetTaskErr[taskListID]; err != nil {
		return nil, err
	}

	for _, t := range f.tasks[taskListID] {
		if t.ID == taskID {
			found := t
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// InsertTask implements tasks.Service.
func (f *FakeService) InsertTask(ctx context.Context, taskListID string, in tasks.TaskInput) (*tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "InsertTask", ListID: taskListID, Input: in})

	if f.InsertTaskErr != nil {
		return nil, f.InsertTaskErr
	}

	f.nextID++
	task := tasks.Task{
		ID:     fmt.Sprintf("task-%d", f.nextID),
		Title:  in.Title,
		Notes:  in.Notes,
		Status: in.Status,
		Due:    in.Due,
	}
	f.tasks[taskListID] = append(f.tasks[taskListID], task)
	return &task, nil
}

// UpdateTask implements tasks.Service.
func (f *FakeService) UpdateTask(ctx context.Context, taskListID, taskID string, in tasks.TaskInput) (*tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "UpdateTask", ListID: taskListID, TaskID: taskID, Input: in})

	if f.UpdateTaskErr != nil {
		return nil, f.UpdateTaskErr
	}

	for i, t := range f.tasks[taskListID] {
		if t.ID != taskID {
			continue
		}
		if in.Title != "" {
			t.Title = in.Title
		}
		if in.Notes != "" {
			t.Notes = in.Notes
		}
		if in.Status != "" {
			t.Status = in.Status
		}
		if in.Due != "" {
			t.Due = in.Due
		}
		f.tasks[taskListID][i] = t
		return &t, nil
	}
	return nil, ErrNotFound
}

// DeleteTask implements tasks.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskListID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "DeleteTask", ListID: taskListID, TaskID: taskID})

	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	list := f.tasks[taskListID]
	for i, t := range list {
		if t.ID == taskID {
			f.tasks[taskListID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ClearCompleted implements tasks.Service.
func (f *FakeService) ClearCompleted(ctx context.Context, taskListID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "ClearCompleted", ListID: taskListID})

	if f.ClearErr != nil {
		return f.ClearErr
	}

	var kept []tasks.Task
	for _, t := range f.tasks[taskListID] {
		if t.Status != tasks.StatusCompleted {
			kept = append(kept, t)
		}
	}
	f.tasks[taskListID] = kept
	return nil
}
