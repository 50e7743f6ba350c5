package tasks_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvinjchoi/gtasks-mcp/internal/tasks"
)

func TestFormatTask(t *testing.T) {
	task := tasks.Task{
		ID:       "t1",
		Title:    "Buy milk",
		Notes:    "2 liters",
		Status:   tasks.StatusNeedsAction,
		Due:      "2025-11-01T00:00:00.000Z",
		SelfLink: "https://example.com/t1",
		Position: "0001",
		Updated:  "2025-10-31T10:00:00.000Z",
		Etag:     "etag",
		Kind:     "tasks#task",
		Links: []tasks.Link{
			{Type: "email", Link: "https://a"},
			{Type: "email", Link: "https://b"},
		},
	}

	want := "Buy milk\n (Due: 2025-11-01T00:00:00.000Z) - Notes: 2 liters - ID: t1 - Status: needsAction" +
		" - URI: https://example.com/t1 - Hidden: false - Parent:  - Deleted?: false - Completed Date: " +
		" - Position: 0001 - Updated Date: 2025-10-31T10:00:00.000Z - ETag: etag - Links: https://a, https://b - Kind: tasks#task"

	assert.Equal(t, want, tasks.FormatTask(task))
	assert.Equal(t, tasks.FormatTask(task), tasks.FormatTask(task))
}

func TestFormatTaskWithoutDue(t *testing.T) {
	out := tasks.FormatTask(tasks.Task{Title: "No date"})
	assert.True(t, strings.HasPrefix(out, "No date\n (Due: Not set) - Notes:  - ID: "), out)
}

func TestFormatTasks(t *testing.T) {
	list := []tasks.Task{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}

	out := tasks.FormatTasks(list)
	assert.Equal(t, tasks.FormatTask(list[0])+"\n"+tasks.FormatTask(list[1]), out)
	assert.Empty(t, tasks.FormatTasks(nil))
}

func TestFormatTaskDetail(t *testing.T) {
	t.Run("defaults for missing values", func(t *testing.T) {
		want := strings.Join([]string{
			"Title: No title",
			"Status: Unknown",
			"Due: Not set",
			"Notes: No notes",
			"Hidden: Unknown",
			"Parent: Unknown",
			"Deleted?: Unknown",
			"Completed Date: Unknown",
			"Position: Unknown",
			"ETag: Unknown",
			"Links: Unknown",
			"Kind: Unknown",
			"Status: Unknown",
			"Created: Unknown",
			"Updated: Unknown",
		}, "\n")
		assert.Equal(t, want, tasks.FormatTaskDetail(tasks.Task{}))
	})

	t.Run("populated task", func(t *testing.T) {
		out := tasks.FormatTaskDetail(tasks.Task{
			Title:   "Buy milk",
			Status:  tasks.StatusCompleted,
			Hidden:  true,
			Deleted: true,
			Links:   []tasks.Link{{Link: "https://a"}},
		})
		assert.Contains(t, out, "Title: Buy milk\n")
		assert.Contains(t, out, "Status: completed\n")
		assert.Contains(t, out, "Hidden: true\n")
		assert.Contains(t, out, "Deleted?: true\n")
		assert.Contains(t, out, "Links: https://a\n")
	})

	t.Run("status repeats and created mirrors updated", func(t *testing.T) {
		out := tasks.FormatTaskDetail(tasks.Task{
			Status:  tasks.StatusNeedsAction,
			Updated: "2024-05-01T10:00:00.000Z",
		})
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 15)
		assert.Equal(t, "Status: needsAction", lines[1])
		assert.Equal(t, []string{
			"Kind: Unknown",
			"Status: needsAction",
			"Created: 2024-05-01T10:00:00.000Z",
			"Updated: 2024-05-01T10:00:00.000Z",
		}, lines[11:])
	})
}
