// Package notifications pushes render, upload, and sync events to an ntfy
// topic.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never need to check whether notifications are enabled. Each event
// category can be switched off independently in config.toml.
package notifications
