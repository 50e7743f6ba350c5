// Package tasks_tools registers the Google Tasks MCP tools.
//
// # Available Tools
//
// Always registered:
//   - search: find tasks whose title or notes contain a query
//   - list: list every task across all task lists
//
// Registered unless the server runs read-only:
//   - create: create a task
//   - update: update a task's title, notes, status or due date
//   - delete: delete a task
//   - clear: clear completed tasks from a task list
//
// Tools that take an optional taskListId fall back to the account's first
// task list when it is empty or "@default".
//
// Every failure is returned as an error result whose text starts with the
// failing action, for example "Error creating task: ...". Authentication
// failures are returned unprefixed.
package tasks_tools
