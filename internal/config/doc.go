// Package config loads, normalizes, and validates itemqueue configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies ITEMQUEUE_* environment overrides.
// The Config type centralizes every knob the CLI and the tool server need:
// which storage backend holds the queue, whether the queue runs cached or
// pass-through, where templates live, and how the exposed tools are named.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical backend names, and clear validation errors.
package config
