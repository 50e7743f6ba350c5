// Package cmd implements the command-line interface for gtasks-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server that exposes Google Tasks to AI assistants
//   - auth: Authorize access to Google Tasks and store the credentials
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
// A .env file in the working directory is loaded before any command runs.
package cmd
