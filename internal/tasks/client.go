package tasks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/option"
	gtasks "google.golang.org/api/tasks/v1"

	"github.com/alvinjchoi/gtasks-mcp/internal/instrumentation"
)

// Client wraps the Google Tasks service
type Client struct {
	svc     *gtasks.Service
	metrics *instrumentation.Metrics
}

var _ Service = (*Client)(nil)

// NewClient creates a Tasks client that sends requests through httpClient,
// which is expected to carry OAuth2 credentials.
// metrics may be nil, in which case API operations are not recorded.
func NewClient(ctx context.Context, httpClient *http.Client, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	allOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	svc, err := gtasks.NewService(ctx, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	return &Client{
		svc:     svc,
		metrics: metrics,
	}, nil
}

// observe wraps a single API call in a span and records its outcome.
func (c *Client) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceTasks, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	if c.metrics != nil {
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceTasks, operation, status, time.Since(start))
	}

	return remoteError(operation, err)
}

// ListTaskLists lists the task lists of the authenticated user
func (c *Client) ListTaskLists(ctx context.Context, maxResults int64) ([]TaskList, error) {
	var taskLists []TaskList

	err := c.observe(ctx, instrumentation.OperationListTaskLists, func(ctx context.Context) error {
		call := c.svc.Tasklists.List().Context(ctx)
		if maxResults > 0 {
			call = call.MaxResults(maxResults)
		}

		result, err := call.Do()
		if err != nil {
			return err
		}

		for _, tl := range result.Items {
			taskLists = append(taskLists, toTaskList(tl))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return taskLists, nil
}

// ListTasks returns one page of tasks from a task list
func (c *Client) ListTasks(ctx context.Context, taskListID string, opts ListOptions) (*TaskPage, error) {
	page := &TaskPage{}

	err := c.observe(ctx, instrumentation.OperationListTasks, func(ctx context.Context) error {
		call := c.svc.Tasks.List(taskListID).Context(ctx)
		if opts.MaxResults > 0 {
			call = call.MaxResults(opts.MaxResults)
		}
		if opts.PageToken != "" {
			call = call.PageToken(opts.PageToken)
		}

		result, err := call.Do()
		if err != nil {
			return err
		}

		for _, t := range result.Items {
			page.Items = append(page.Items, toTask(t))
		}
		page.NextPageToken = result.NextPageToken
		return nil
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// GetTask retrieves a specific task
func (c *Client) GetTask(ctx context.Context, taskListID, taskID string) (*Task, error) {
	var task Task

	err := c.observe(ctx, instrumentation.OperationGetTask, func(ctx context.Context) error {
		t, err := c.svc.Tasks.Get(taskListID, taskID).Context(ctx).Do()
		if err != nil {
			return err
		}
		task = toTask(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// InsertTask creates a new task in a task list
func (c *Client) InsertTask(ctx context.Context, taskListID string, in TaskInput) (*Task, error) {
	var task Task

	err := c.observe(ctx, instrumentation.OperationInsertTask, func(ctx context.Context) error {
		created, err := c.svc.Tasks.Insert(taskListID, fromInput("", in)).Context(ctx).Do()
		if err != nil {
			return err
		}
		task = toTask(created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// UpdateTask updates an existing task. Fields left empty in the input are
// not sent.
func (c *Client) UpdateTask(ctx context.Context, taskListID, taskID string, in TaskInput) (*Task, error) {
	var task Task

	err := c.observe(ctx, instrumentation.OperationUpdateTask, func(ctx context.Context) error {
		updated, err := c.svc.Tasks.Update(taskListID, taskID, fromInput(taskID, in)).Context(ctx).Do()
		if err != nil {
			return err
		}
		task = toTask(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, taskListID, taskID string) error {
	return c.observe(ctx, instrumentation.OperationDeleteTask, func(ctx context.Context) error {
		return c.svc.Tasks.Delete(taskListID, taskID).Context(ctx).Do()
	})
}

// ClearCompleted clears all completed tasks from a task list
func (c *Client) ClearCompleted(ctx context.Context, taskListID string) error {
	return c.observe(ctx, instrumentation.OperationClearCompleted, func(ctx context.Context) error {
		return c.svc.Tasks.Clear(taskListID).Context(ctx).Do()
	})
}
