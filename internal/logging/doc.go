// Package logging assembles structured slog loggers used across reelctl.
//
// It owns the console and JSON handlers, routes output to stderr plus an
// optional size-rotated log file, and exposes context-aware helpers so client
// code tags log lines with script IDs, render run IDs, and correlation IDs.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
