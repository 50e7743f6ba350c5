package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newTestClient starts a fake Tasks API and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), srv.Client(), nil, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_ListTaskLists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/@me/lists"), r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("maxResults"))

		writeJSON(t, w, map[string]any{
			"items": []map[string]any{
				{"id": "L1", "title": "Groceries", "updated": "2025-10-31T14:00:00Z"},
				{"id": "L2", "title": "Work"},
			},
		})
	})

	lists, err := client.ListTaskLists(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, TaskList{ID: "L1", Title: "Groceries", Updated: "2025-10-31T14:00:00Z"}, lists[0])
	assert.Equal(t, "L2", lists[1].ID)
}

func TestClient_ListTasks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/lists/L1/tasks"), r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "tok-1", r.URL.Query().Get("pageToken"))

		writeJSON(t, w, map[string]any{
			"items": []map[string]any{
				{"id": "t1", "title": "Buy milk", "status": "needsAction", "due": "2025-11-01T00:00:00.000Z"},
			},
			"nextPageToken": "tok-2",
		})
	})

	page, err := client.ListTasks(context.Background(), "L1", ListOptions{MaxResults: 10, PageToken: "tok-1"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Buy milk", page.Items[0].Title)
	assert.Equal(t, "2025-11-01T00:00:00.000Z", page.Items[0].Due)
	assert.Equal(t, "tok-2", page.NextPageToken)
}

func TestClient_ListTasksOmitsEmptyPageToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["pageToken"]
		assert.False(t, ok, "pageToken should not be sent")
		writeJSON(t, w, map[string]any{})
	})

	page, err := client.ListTasks(context.Background(), "L1", ListOptions{MaxResults: 100})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextPageToken)
}

func TestClient_InsertTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/lists/L1/tasks"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Buy bread", body["title"])
		assert.Equal(t, "needsAction", body["status"])
		assert.NotContains(t, body, "notes")
		assert.NotContains(t, body, "id")

		writeJSON(t, w, map[string]any{"id": "new-id", "title": "Buy bread", "status": "needsAction"})
	})

	task, err := client.InsertTask(context.Background(), "L1", TaskInput{Title: "Buy bread", Status: StatusNeedsAction})
	require.NoError(t, err)
	assert.Equal(t, "new-id", task.ID)
}

func TestClient_UpdateTaskSendsOnlySuppliedFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/lists/L1/tasks/t1"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "t1", body["id"])
		assert.Equal(t, "completed", body["status"])
		assert.NotContains(t, body, "title")
		assert.NotContains(t, body, "due")

		writeJSON(t, w, map[string]any{"id": "t1", "title": "Buy milk", "status": "completed"})
	})

	task, err := client.UpdateTask(context.Background(), "L1", "t1", TaskInput{Status: StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, StatusCompleted, task.Status)
}

func TestClient_DeleteAndClear(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteTask(context.Background(), "L1", "t1"))
	require.NoError(t, client.ClearCompleted(context.Background(), "L1"))

	require.Len(t, paths, 2)
	assert.True(t, strings.HasPrefix(paths[0], "DELETE "), paths[0])
	assert.True(t, strings.HasSuffix(paths[0], "/lists/L1/tasks/t1"), paths[0])
	assert.True(t, strings.HasPrefix(paths[1], "POST "), paths[1])
	assert.True(t, strings.HasSuffix(paths[1], "/lists/L1/clear"), paths[1])
}

func TestClient_RemoteErrorKeepsServiceMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"Task list not found."}}`)
	})

	_, err := client.GetTask(context.Background(), "missing", "t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Task list not found.")

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "get_task", remoteErr.Op)
}
