package tasks

import (
	gtasks "google.golang.org/api/tasks/v1"
)

// Task status values accepted by the service.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// DefaultTaskListID is the alias clients use for "whatever list is first".
const DefaultTaskListID = "@default"

// TaskList represents a Google Tasks task list
type TaskList struct {
	ID      string
	Title   string
	Updated string
}

// Task represents a Google Tasks task.
// Timestamps are the RFC 3339 strings returned by the service, unparsed.
type Task struct {
	ID        string
	Title     string
	Notes     string
	Status    string // "needsAction" or "completed"
	Due       string
	Completed string
	Parent    string // Parent task ID for subtasks
	Position  string // Position in the list
	Updated   string
	Etag      string
	Kind      string
	Hidden    bool
	Deleted   bool
	SelfLink  string
	Links     []Link // Related links
}

// Link represents a related link in a task
type Link struct {
	Type        string // "email" or other types
	Description string
	Link        string
}

// TaskInput carries the fields of a create or update request.
// Empty fields are left out of the request body.
type TaskInput struct {
	Title  string
	Notes  string
	Status string
	Due    string
}

// ListOptions controls a single page of a task listing.
type ListOptions struct {
	MaxResults int64
	PageToken  string
}

// TaskPage is one page of tasks from a single list.
type TaskPage struct {
	Items         []Task
	NextPageToken string
}

// toTaskList converts a Google Tasks TaskList to our TaskList type
func toTaskList(tl *gtasks.TaskList) TaskList {
	if tl == nil {
		return TaskList{}
	}

	return TaskList{
		ID:      tl.Id,
		Title:   tl.Title,
		Updated: tl.Updated,
	}
}

// toTask converts a Google Tasks Task to our Task type
func toTask(t *gtasks.Task) Task {
	if t == nil {
		return Task{}
	}

	result := Task{
		ID:       t.Id,
		Title:    t.Title,
		Notes:    t.Notes,
		Status:   t.Status,
		Due:      t.Due,
		Parent:   t.Parent,
		Position: t.Position,
		Updated:  t.Updated,
		Etag:     t.Etag,
		Kind:     t.Kind,
		Hidden:   t.Hidden,
		Deleted:  t.Deleted,
		SelfLink: t.SelfLink,
	}

	if t.Completed != nil {
		result.Completed = *t.Completed
	}

	if t.Links != nil {
		result.Links = make([]Link, len(t.Links))
		for i, link := range t.Links {
			if link == nil {
				continue
			}
			result.Links[i] = Link{
				Type:        link.Type,
				Description: link.Description,
				Link:        link.Link,
			}
		}
	}

	return result
}

// fromInput builds the request body for an insert or update.
func fromInput(id string, in TaskInput) *gtasks.Task {
	return &gtasks.Task{
		Id:     id,
		Title:  in.Title,
		Notes:  in.Notes,
		Status: in.Status,
		Due:    in.Due,
	}
}
