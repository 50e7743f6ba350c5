// Package common provides helpers shared by the MCP tool packages:
// instrumentation wrappers for tool handlers, argument extraction and
// error result construction.
package common
