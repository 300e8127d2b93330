// Package main hosts the itemqueue CLI entrypoint and command graph.
//
// The Cobra command tree serves the MCP tool server on stdio and offers
// direct queue maintenance (get, push, load, peek), template inspection,
// readiness checks, and configuration scaffolding. Configuration resolution
// is centralized here so subcommands only deal with presentation.
package main
