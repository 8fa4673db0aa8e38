package journal

import (
	"context"
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginAndFinishRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Begin(ctx, "run-1", 2026, 30, TriggerScheduled); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Finish(ctx, "run-1", StatusSuccess, 10, 7, 3, []string{"Dog", "Uncharted"}, nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs", len(runs))
	}
	run := runs[0]
	if run.Status != StatusSuccess || run.MatchedCount != 7 || run.UnmatchedCount != 3 {
		t.Errorf("run = %+v", run)
	}
	if len(run.AddedTitles) != 2 || run.AddedTitles[0] != "Dog" {
		t.Errorf("added titles = %v", run.AddedTitles)
	}
	if run.FinishedAt.IsZero() || run.FinishedAt.Before(run.StartedAt) {
		t.Errorf("timestamps: started %v finished %v", run.StartedAt, run.FinishedAt)
	}
}

func TestFinishRecordsFailure(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Begin(ctx, "run-2", 2026, 31, TriggerManual); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Finish(ctx, "run-2", StatusFailed, 0, 0, 0, nil, errors.New("chart fetch failed")); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	run, err := store.LastForWeek(ctx, 2026, 31)
	if err != nil {
		t.Fatalf("LastForWeek: %v", err)
	}
	if run == nil || run.Status != StatusFailed || run.Error != "chart fetch failed" {
		t.Errorf("run = %+v", run)
	}
}

func TestFinishUnknownRunFails(t *testing.T) {
	store := openTestStore(t)
	if err := store.Finish(context.Background(), "ghost", StatusSuccess, 0, 0, 0, nil, nil); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestLastForWeekReturnsNilWhenEmpty(t *testing.T) {
	store := openTestStore(t)
	run, err := store.LastForWeek(context.Background(), 2026, 1)
	if err != nil {
		t.Fatalf("LastForWeek: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil, got %+v", run)
	}
}
