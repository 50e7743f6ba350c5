package tasks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvinjchoi/gtasks-mcp/internal/tasks"
	"github.com/alvinjchoi/gtasks-mcp/internal/tasks/taskstest"
)

func TestReadTask(t *testing.T) {
	ctx := context.Background()

	t.Run("finds a task after failures in earlier lists", func(t *testing.T) {
		fake := taskstest.NewFakeService()
		for _, id := range []string{"L1", "L2", "L3", "L4"} {
			fake.AddList(id, id)
		}
		fake.GetTaskErr["L1"] = errors.New("boom")
		fake.GetTaskErr["L2"] = errors.New("boom")
		fake.AddTask("L3", tasks.Task{ID: "x", Title: "Found me"})
		fake.AddTask("L4", tasks.Task{ID: "x", Title: "Shadowed"})

		task, err := tasks.ReadTask(ctx, fake, "x")
		require.NoError(t, err)
		assert.Equal(t, "Found me", task.Title)
		assert.Equal(t, 3, fake.CallCount("GetTask"))
	})

	t.Run("not found in any list", func(t *testing.T) {
		fake := taskstest.NewFakeService()
		fake.AddList("L1", "First")
		fake.AddList("L2", "Second")

		_, err := tasks.ReadTask(ctx, fake, "missing")
		assert.ErrorIs(t, err, tasks.ErrTaskNotFound)
	})

	t.Run("listing failure propagates", func(t *testing.T) {
		fake := taskstest.NewFakeService()
		fake.ListListsErr = errors.New("unauthorized")

		_, err := tasks.ReadTask(ctx, fake, "x")
		assert.EqualError(t, err, "unauthorized")
	})
}

func TestFilterTasks(t *testing.T) {
	all := []tasks.Task{
		{ID: "1", Title: "Foobar"},
		{ID: "2", Title: "Other", Notes: "see notes: FOO items"},
		{ID: "3", Title: "Unrelated"},
	}

	matched := tasks.FilterTasks(all, "foo")
	require.Len(t, matched, 2)
	assert.Equal(t, "1", matched[0].ID)
	assert.Equal(t, "2", matched[1].ID)

	assert.Empty(t, tasks.FilterTasks(all, "bread"))
}
