// Package server holds the state and HTTP plumbing shared by the MCP
// transports.
//
// ServerContext owns the Google Tasks client. The client is built lazily on
// first use; concurrent first requests share one initialization attempt and a
// failed attempt is retried on the next request.
//
// HTTPServer mounts the streamable HTTP transport at /mcp next to the
// Kubernetes style health endpoints served by HealthChecker. MetricsServer
// exposes Prometheus metrics on a separate port. SessionTracker follows MCP
// session registration to keep the active sessions gauge current.
package server
