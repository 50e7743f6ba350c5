// Package tasks provides the Google Tasks side of the gtasks-mcp server.
//
// The package is split into two layers:
//   - A Service interface describing the remote operations the server needs
//     (list task lists, list, get, insert, update, delete and clear tasks),
//     with Client as the implementation on top of the Google Tasks API (tasks/v1).
//   - Request helpers that only talk to a Service: ResolveTaskListID picks the
//     list a write goes to, AggregatePage and AggregateAll collect tasks across
//     all lists, ReadTask finds a task by id, and the Format* functions turn
//     tasks into the plain text returned to MCP clients.
//
// Date and time fields are kept as the raw strings the service returned. The
// package never parses them and never invents task ids.
//
// # Example Usage
//
//	client, err := tasks.NewClient(ctx, httpClient, metrics)
//	if err != nil {
//	    return err
//	}
//
//	all, err := tasks.AggregateAll(ctx, client, logger)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(tasks.FormatTasks(all))
package tasks
