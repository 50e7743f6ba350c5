// Package resources exposes every Google task as an MCP resource at
// gtasks:///<taskId>.
//
// Reading a resource searches all task lists for the id and renders the task
// as labelled plain text. Listing resources pages through every task list with
// the service's page token; the token is handed to clients base64 encoded,
// which is the cursor format the MCP server validates.
package resources
