// Package logging assembles structured slog loggers and formatting helpers used
// across Mediatorr.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so scan code automatically tags
// log lines with the run ID, library, and unit key. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
