// Package testsupport provides shared helpers for package tests: seeded
// configs with per-test temp directories, store constructors with cleanup,
// and in-memory fakes for the chart feed and the Radarr library.
package testsupport

import (
	"testing"

	"boxarr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp data directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Data.Directory = t.TempDir()
	cfg.Radarr.URL = "http://127.0.0.1:7878"
	cfg.Radarr.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAutoAdd enables automatic adding with the given limit.
func WithAutoAdd(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.AutoAdd.Enabled = true
		cfg.AutoAdd.Limit = limit
	}
}

// WithSchedule sets the weekly trigger slot on the test config.
func WithSchedule(weekday, hour int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scheduler.Weekday = weekday
		cfg.Scheduler.Hour = hour
	}
}
