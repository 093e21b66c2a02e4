// Package logging assembles the structured slog loggers shared by the routing
// core, the intelligence cache, and the CLI.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes WithComponent so subsystems tag every line with a stable
// component name. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
