package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"boxarr/internal/logging"
	"boxarr/internal/radarr"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), logging.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestWriteCreatesTimestampedAndLatestFiles(t *testing.T) {
	store := newTestStore(t)
	record := RunRecord{
		RunID:          "run-1",
		Timestamp:      time.Date(2026, time.July, 24, 23, 0, 0, 0, time.UTC),
		Year:           2026,
		Week:           30,
		Status:         "success",
		TotalCount:     10,
		MatchedCount:   7,
		UnmatchedCount: 3,
		StatusBreakdown: map[radarr.DisplayStatus]int{
			radarr.StatusDownloaded: 5,
			radarr.StatusInCinemas:  2,
		},
		AddedTitles: []string{"Dog"},
	}

	path, err := store.Write(record)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "2026W30_20260724_230000.json" {
		t.Errorf("timestamped name = %s", filepath.Base(path))
	}
	if !store.HasLatest(2026, 30) {
		t.Fatal("latest pointer missing")
	}

	got, err := store.Latest(2026, 30)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.RunID != "run-1" || got.MatchedCount != 7 {
		t.Errorf("round-tripped record = %+v", got)
	}
	if got.StatusBreakdown[radarr.StatusDownloaded] != 5 {
		t.Errorf("status breakdown = %+v", got.StatusBreakdown)
	}
}

func TestLatestReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Latest(2026, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.HasLatest(2026, 1) {
		t.Fatal("HasLatest should be false")
	}
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Write(RunRecord{
			RunID:     string(rune('a' + i)),
			Timestamp: base.AddDate(0, 0, i*7),
			Year:      2026,
			Week:      27 + i,
		})
		if err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	records, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].Week != 29 || records[1].Week != 28 {
		t.Errorf("order = W%02d, W%02d", records[0].Week, records[1].Week)
	}
}

func TestPruneKeepsLatestPointers(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Write(RunRecord{
		RunID:     "old",
		Timestamp: time.Date(2026, time.January, 2, 12, 0, 0, 0, time.UTC),
		Year:      2026,
		Week:      1,
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Age both files beyond retention.
	stale := time.Now().AddDate(0, 0, -120)
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		path := filepath.Join(store.Dir(), entry.Name())
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	store.Prune(90)

	if !store.HasLatest(2026, 1) {
		t.Fatal("latest pointer was pruned")
	}
	records, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("timestamped record survived prune: %+v", records)
	}
}
