// Package logging builds the application's slog loggers. It provides a
// human-friendly console handler, a JSON handler for machine consumption,
// attribute helpers shared across packages, and retention pruning for
// files written under the data directory.
package logging
