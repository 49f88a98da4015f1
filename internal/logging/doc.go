// Package logging assembles structured slog loggers and formatting helpers used
// across tagres.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so the orchestrator can tag log
// lines with the run identifier and resource group. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits lines with the same shape.
package logging
