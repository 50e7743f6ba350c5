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

func TestResolveTaskListID(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit id skips the service", func(t *testing.T) {
		fake := taskstest.NewFakeService()
		fake.AddList("L1", "First")

		id, err := tasks.ResolveTaskListID(ctx, fake, "L9", nil)
		require.NoError(t, err)
		assert.Equal(t, "L9", id)
		assert.Zero(t, fake.CallCount("ListTaskLists"))
	})

	t.Run("default alias picks the first list", func(t *testing.T) {
		fake := taskstest.NewFakeService()
		fake.AddList("L1", "First")
		fake.AddList("L2", "Second")

		id, err := tasks.ResolveTaskListID(ctx, fake, tasks.DefaultTaskListID, nil)
		require.NoError(t, err)
		assert.Equal(t, "L1", id)

		calls := fake.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, int64(100), calls[0].Options.MaxResults)
	})

	t.Run("empty id picks the first list", func(t *testing.T) {
		fake := taskstest.NewFakeService()
		fake.AddList("L1", "First")

		id, err := tasks.ResolveTaskListID(ctx, fake, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "L1", id)
	})

	t.Run("no lists", func(t *testing.T) {
		fake := taskstest.NewFakeService()

		_, err := tasks.ResolveTaskListID(ctx, fake, "", nil)
		assert.ErrorIs(t, err, tasks.ErrNoTaskLists)
	})

	t.Run("listing failure propagates", func(t *testing.T) {
		fake := taskstest.NewFakeService()
		fake.ListListsErr = errors.New("quota exceeded")

		_, err := tasks.ResolveTaskListID(ctx, fake, "", nil)
		assert.EqualError(t, err, "quota exceeded")
	})
}
