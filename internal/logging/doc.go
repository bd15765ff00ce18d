// Package logging assembles structured slog loggers and formatting helpers used
// across n8nexplorer.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so sync code can tag log lines
// with the correlation ID of the refresh that produced them. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
