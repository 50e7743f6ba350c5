// Package logging provides structured logging utilities for gtasks-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "tasks.create")
//	logger.Info("task created",
//	    logging.TaskList(listID),
//	    logging.Status(logging.StatusSuccess))
//
// When serving over stdio, stdout carries the protocol, so the process
// logger must write to stderr:
//
//	logger := logging.NewLogger(os.Stderr, logging.FormatJSON, debug)
//
// Tokens are never logged directly; use SanitizeToken.
package logging
