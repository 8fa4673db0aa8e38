package testsupport

import (
	"testing"

	"boxarr/internal/config"
	"boxarr/internal/history"
	"boxarr/internal/journal"
	"boxarr/internal/logging"
)

// MustOpenJournal opens a run journal for tests and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg.Data.Directory)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenHistory opens a history store rooted in the test config's data
// directory.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.NewStore(cfg.HistoryDir(), logging.NewNop())
	if err != nil {
		t.Fatalf("history.NewStore: %v", err)
	}
	return store
}
