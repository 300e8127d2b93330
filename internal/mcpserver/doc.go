// Package mcpserver exposes the item queue as Model Context Protocol tools.
//
// Four tools are registered, each optional and renameable through the
// [tools] config section: get (take an item from either end), push (validate
// and insert an item at either end), load (replace the queue with a template
// or splice a template onto either end), and list (available templates).
//
// Tool failures are returned as tool results with IsError set; the message
// is prefixed with the failure kind so callers can tell a missing template
// from a rejected item. Each call is logged with a fresh correlation id.
//
// Only one server may run per lock file.
package mcpserver
