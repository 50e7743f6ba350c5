package google

import gtasks "google.golang.org/api/tasks/v1"

// DefaultOAuthScopes are the Google OAuth scopes the server requests.
// Full Tasks access is needed for create, update, delete and clear.
var DefaultOAuthScopes = []string{
	gtasks.TasksScope,
}
