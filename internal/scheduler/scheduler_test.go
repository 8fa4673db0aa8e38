package scheduler

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"boxarr/internal/boxoffice"
	"boxarr/internal/config"
	"boxarr/internal/history"
	"boxarr/internal/journal"
	"boxarr/internal/logging"
	"boxarr/internal/radarr"
)

type fakeFeed struct {
	entries    []boxoffice.Entry
	err        error
	year, week int
	fetchCalls int
}

func (f *fakeFeed) FetchWeek(_ context.Context, year, week int) ([]boxoffice.Entry, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, &boxoffice.FeedError{Year: year, Week: week, Err: f.err}
	}
	return f.entries, nil
}

func (f *fakeFeed) CurrentWeek() (int, int) { return f.year, f.week }

type fakeLibrary struct {
	movies     []radarr.Movie
	candidates map[string][]radarr.Candidate
	profiles   []radarr.QualityProfile
	folders    []radarr.RootFolder

	listErr   error
	searchErr error
	addErr    error

	listCalls int
	added     []radarr.AddRequest
	nextID    int64
}

func (f *fakeLibrary) ListMovies(context.Context) ([]radarr.Movie, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]radarr.Movie(nil), f.movies...), nil
}

func (f *fakeLibrary) SearchByTitle(_ context.Context, title string) ([]radarr.Candidate, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates[title], nil
}

func (f *fakeLibrary) AddMovie(_ context.Context, req radarr.AddRequest) (*radarr.Movie, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, req)
	f.nextID++
	movie := radarr.Movie{
		ID:      f.nextID + 100,
		Title:   req.Candidate.Title,
		Year:    req.Candidate.Year,
		TMDBID:  req.Candidate.TMDBID,
		Status:  "inCinemas",
		Genres:  req.Candidate.Genres,
		HasFile: false,
	}
	f.movies = append(f.movies, movie)
	return &movie, nil
}

func (f *fakeLibrary) UpdateMovie(_ context.Context, movie radarr.Movie) (*radarr.Movie, error) {
	return &movie, nil
}

func (f *fakeLibrary) QualityProfiles(context.Context) ([]radarr.QualityProfile, error) {
	return f.profiles, nil
}

func (f *fakeLibrary) RootFolders(context.Context) ([]radarr.RootFolder, error) {
	return f.folders, nil
}

func (f *fakeLibrary) Ping(context.Context) error { return nil }

type fakeNotifier struct {
	completed int
	failed    int
	added     [][]string
}

func (f *fakeNotifier) NotifyRunCompleted(context.Context, string, int, int, int) error {
	f.completed++
	return nil
}

func (f *fakeNotifier) NotifyRunFailed(context.Context, string, error) error {
	f.failed++
	return nil
}

func (f *fakeNotifier) NotifyMoviesAdded(_ context.Context, _ string, titles []string) error {
	f.added = append(f.added, titles)
	return nil
}

func (f *fakeNotifier) TestNotification(context.Context) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Directory = t.TempDir()
	cfg.Radarr.APIKey = "test"
	cfg.AutoAdd.Enabled = true
	return &cfg
}

func newTestScheduler(t *testing.T, cfg *config.Config, feed *fakeFeed, lib *fakeLibrary) (*Scheduler, *fakeNotifier) {
	t.Helper()
	store, err := history.NewStore(cfg.HistoryDir(), logging.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	notifier := &fakeNotifier{}
	sched, err := New(cfg, Deps{
		Feed:     feed,
		Library:  lib,
		History:  store,
		Notifier: notifier,
		Logger:   logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sched, notifier
}

func defaultLibrary() *fakeLibrary {
	return &fakeLibrary{
		movies: []radarr.Movie{
			{ID: 1, Title: "The Batman", Year: 2022, Status: "released", HasFile: true},
		},
		candidates: map[string][]radarr.Candidate{},
		profiles:   []radarr.QualityProfile{{ID: 1, Name: "HD-1080p"}},
		folders:    []radarr.RootFolder{{Path: "/movies"}},
	}
}

func TestReconcileEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	feed := &fakeFeed{
		entries: []boxoffice.Entry{
			{Rank: 1, Title: "The Batman"},
			{Rank: 2, Title: "Unknown Movie 2024"},
		},
		year: 2024, week: 11,
	}
	lib := defaultLibrary()
	sched, notifier := newTestScheduler(t, cfg, feed, lib)

	record, err := sched.Reconcile(context.Background(), 2024, 10)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if record.MatchedCount != 1 || record.UnmatchedCount != 1 {
		t.Errorf("counts = %d/%d", record.MatchedCount, record.UnmatchedCount)
	}
	if len(record.AddedTitles) != 0 {
		t.Errorf("added = %v", record.AddedTitles)
	}
	if record.MatchedItems[0].Confidence != 1.0 || record.MatchedItems[0].Method != "exact" {
		t.Errorf("matched item = %+v", record.MatchedItems[0])
	}
	if record.StatusBreakdown[radarr.StatusDownloaded] != 1 {
		t.Errorf("status breakdown = %+v", record.StatusBreakdown)
	}
	// The no-candidate entry is recorded as a skip, not an error.
	if len(record.Skips) != 1 || record.Skips[0].Reason != SkipNoCandidates {
		t.Errorf("skips = %+v", record.Skips)
	}
	if notifier.completed != 1 || notifier.failed != 0 {
		t.Errorf("notifications: %d completed, %d failed", notifier.completed, notifier.failed)
	}
	if sched.State() != StateIdle {
		t.Errorf("state = %s", sched.State())
	}
}

func TestReconcileAddsAndRematches(t *testing.T) {
	cfg := testConfig(t)
	cfg.RootFolders = config.RootFolders{
		Enabled: true,
		Rules:   []config.RootFolderRule{{Genres: []string{"Action"}, Folder: "/action", Index: 1}},
	}
	feed := &fakeFeed{
		entries: []boxoffice.Entry{
			{Rank: 1, Title: "The Batman"},
			{Rank: 2, Title: "Uncharted"},
		},
		year: 2022, week: 10,
	}
	lib := defaultLibrary()
	lib.folders = append(lib.folders, radarr.RootFolder{Path: "/action"})
	lib.candidates["Uncharted"] = []radarr.Candidate{
		{TMDBID: 335787, Title: "Uncharted", Year: 2022, Genres: []string{"Action", "Adventure"}, Certification: "PG-13"},
	}
	sched, notifier := newTestScheduler(t, cfg, feed, lib)

	record, err := sched.Reconcile(context.Background(), 2022, 9)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(record.AddedTitles) != 1 || record.AddedTitles[0] != "Uncharted" {
		t.Fatalf("added = %v", record.AddedTitles)
	}
	if len(lib.added) != 1 {
		t.Fatalf("add requests = %+v", lib.added)
	}
	if lib.added[0].RootFolder != "/action" {
		t.Errorf("root folder = %q", lib.added[0].RootFolder)
	}
	if lib.added[0].QualityProfileID != 1 {
		t.Errorf("profile id = %d", lib.added[0].QualityProfileID)
	}
	// The post-add re-match sees the new movie.
	if record.MatchedCount != 2 || record.UnmatchedCount != 0 {
		t.Errorf("counts after re-match = %d/%d", record.MatchedCount, record.UnmatchedCount)
	}
	if lib.listCalls != 2 {
		t.Errorf("list calls = %d", lib.listCalls)
	}
	if len(notifier.added) != 1 {
		t.Errorf("add notifications = %v", notifier.added)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	feed := &fakeFeed{
		entries: []boxoffice.Entry{{Rank: 1, Title: "Uncharted"}},
		year:    2022, week: 10,
	}
	lib := defaultLibrary()
	lib.candidates["Uncharted"] = []radarr.Candidate{
		{TMDBID: 335787, Title: "Uncharted", Year: 2022, Genres: []string{"Action"}},
	}
	sched, _ := newTestScheduler(t, cfg, feed, lib)

	first, err := sched.Reconcile(context.Background(), 2022, 9)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := sched.Reconcile(context.Background(), 2022, 9)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.MatchedCount != second.MatchedCount || first.UnmatchedCount != second.UnmatchedCount {
		t.Errorf("counts diverged: %d/%d vs %d/%d",
			first.MatchedCount, first.UnmatchedCount, second.MatchedCount, second.UnmatchedCount)
	}
	if len(lib.added) != 1 {
		t.Fatalf("movie added twice: %+v", lib.added)
	}
	if len(second.AddedTitles) != 0 {
		t.Errorf("second run added = %v", second.AddedTitles)
	}
}

func TestReconcileFeedFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	feed := &fakeFeed{err: errors.New("upstream down"), year: 2026, week: 30}
	sched, notifier := newTestScheduler(t, cfg, feed, defaultLibrary())

	_, err := sched.Reconcile(context.Background(), 2026, 29)
	var feedErr *boxoffice.FeedError
	if !errors.As(err, &feedErr) {
		t.Fatalf("expected FeedError, got %v", err)
	}
	// No run record is written for a fatal attempt.
	if sched.history.HasLatest(2026, 29) {
		t.Error("run record written despite fatal feed error")
	}
	if notifier.failed != 1 {
		t.Errorf("failure notifications = %d", notifier.failed)
	}
}

func TestReconcileLibrarySnapshotFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	feed := &fakeFeed{entries: []boxoffice.Entry{{Rank: 1, Title: "Dog"}}, year: 2026, week: 30}
	lib := defaultLibrary()
	lib.listErr = errors.New("connection refused")
	sched, _ := newTestScheduler(t, cfg, feed, lib)

	_, err := sched.Reconcile(context.Background(), 2026, 29)
	var libErr *LibraryError
	if !errors.As(err, &libErr) {
		t.Fatalf("expected LibraryError, got %v", err)
	}
	if libErr.Step != "snapshot" {
		t.Errorf("step = %s", libErr.Step)
	}
}

func TestReconcileRejectsConcurrentRuns(t *testing.T) {
	cfg := testConfig(t)
	feed := &fakeFeed{entries: []boxoffice.Entry{{Rank: 1, Title: "Dog"}}, year: 2026, week: 30}
	sched, _ := newTestScheduler(t, cfg, feed, defaultLibrary())

	if !sched.beginRun() {
		t.Fatal("beginRun failed")
	}
	if _, err := sched.Reconcile(context.Background(), 2026, 29); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	sched.endRun()

	if _, err := sched.Reconcile(context.Background(), 2026, 29); err != nil {
		t.Fatalf("run after release: %v", err)
	}
}

func TestTriggerNowRejectsExistingWeekBeforeIO(t *testing.T) {
	cfg := testConfig(t)
	feed := &fakeFeed{entries: []boxoffice.Entry{{Rank: 1, Title: "Dog"}}, year: 2026, week: 30}
	sched, _ := newTestScheduler(t, cfg, feed, defaultLibrary())

	if _, err := sched.history.Write(history.RunRecord{RunID: "prior", Year: 2026, Week: 30}); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	_, err := sched.TriggerNow(context.Background())
	if !errors.Is(err, ErrWeekAlreadyReconciled) {
		t.Fatalf("expected ErrWeekAlreadyReconciled, got %v", err)
	}
	if feed.fetchCalls != 0 {
		t.Errorf("fetch called %d times before rejection", feed.fetchCalls)
	}
}

func TestMaybeFireRespectsSlotAndGrace(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Weekday = int(time.Tuesday)
	cfg.Scheduler.Hour = 23
	cfg.Scheduler.MisfireGraceMinutes = 60

	feed := &fakeFeed{entries: []boxoffice.Entry{{Rank: 1, Title: "The Batman"}}, year: 2026, week: 30}
	sched, _ := newTestScheduler(t, cfg, feed, defaultLibrary())

	// 2026-07-21 is a Tuesday.
	slot := time.Date(2026, time.July, 21, 23, 0, 0, 0, time.UTC)

	now := slot.Add(-time.Minute)
	sched.now = func() time.Time { return now }
	sched.maybeFire(context.Background())
	if feed.fetchCalls != 0 {
		t.Fatalf("fired before slot: %d", feed.fetchCalls)
	}

	now = slot.Add(5 * time.Minute)
	sched.maybeFire(context.Background())
	if feed.fetchCalls != 1 {
		t.Fatalf("expected one run inside grace, got %d", feed.fetchCalls)
	}

	// Same slot does not fire twice.
	now = slot.Add(30 * time.Minute)
	sched.maybeFire(context.Background())
	if feed.fetchCalls != 1 {
		t.Fatalf("slot fired twice: %d", feed.fetchCalls)
	}
}

func TestMaybeFireSkipsMissedSlot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Weekday = int(time.Tuesday)
	cfg.Scheduler.Hour = 23
	cfg.Scheduler.MisfireGraceMinutes = 60

	feed := &fakeFeed{entries: []boxoffice.Entry{{Rank: 1, Title: "The Batman"}}, year: 2026, week: 30}
	sched, _ := newTestScheduler(t, cfg, feed, defaultLibrary())

	slot := time.Date(2026, time.July, 21, 23, 0, 0, 0, time.UTC)
	sched.now = func() time.Time { return slot.Add(2 * time.Hour) }
	sched.maybeFire(context.Background())
	if feed.fetchCalls != 0 {
		t.Fatalf("missed slot should not fire, got %d runs", feed.fetchCalls)
	}
}

func TestUpdateScheduleAppliesAtRuntime(t *testing.T) {
	cfg := testConfig(t)
	feed := &fakeFeed{year: 2026, week: 30}
	sched, _ := newTestScheduler(t, cfg, feed, defaultLibrary())

	updated := cfg.Scheduler
	updated.Enabled = false
	updated.Hour = 5
	updated.CheckIntervalSeconds = 5
	sched.UpdateSchedule(updated)

	got := sched.Schedule()
	if got.Enabled || got.Hour != 5 {
		t.Fatalf("schedule = %+v", got)
	}
	// The loop picks up the new interval on its next tick.
	if sched.checkInterval() != 5*time.Second {
		t.Fatalf("check interval = %v", sched.checkInterval())
	}
}

func TestReconcileDefaultsToCurrentChartWeek(t *testing.T) {
	cfg := testConfig(t)
	cfg.AutoAdd.Enabled = false
	// Monday 2026-08-31: the chart week is the weekend that closed on
	// Friday 2026-08-28, ISO week 35.
	feed := &fakeFeed{
		entries: []boxoffice.Entry{{Rank: 1, Title: "The Batman"}},
		year:    2026, week: 35,
	}
	sched, _ := newTestScheduler(t, cfg, feed, defaultLibrary())

	record, err := sched.Reconcile(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if record.Year != 2026 || record.Week != 35 {
		t.Fatalf("default run targeted %dW%02d, want 2026W35", record.Year, record.Week)
	}
}

func TestPersistenceFailureReachesJournal(t *testing.T) {
	cfg := testConfig(t)
	cfg.AutoAdd.Enabled = false
	feed := &fakeFeed{entries: []boxoffice.Entry{{Rank: 1, Title: "The Batman"}}, year: 2026, week: 30}

	historyStore, err := history.NewStore(cfg.HistoryDir(), logging.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	journalStore, err := journal.Open(cfg.Data.Directory)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() { journalStore.Close() })

	sched, err := New(cfg, Deps{
		Feed:    feed,
		Library: defaultLibrary(),
		History: historyStore,
		Journal: journalStore,
		Logger:  logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Pull the history directory out from under the store so the record
	// write fails while the rest of the run succeeds.
	if err := os.RemoveAll(cfg.HistoryDir()); err != nil {
		t.Fatalf("remove history dir: %v", err)
	}

	record, runErr := sched.Reconcile(context.Background(), 2026, 29)
	var persistErr *PersistenceError
	if !errors.As(runErr, &persistErr) {
		t.Fatalf("expected PersistenceError, got %v", runErr)
	}
	if record == nil || record.MatchedCount != 1 {
		t.Fatalf("record = %+v", record)
	}

	run, err := journalStore.LastForWeek(context.Background(), 2026, 29)
	if err != nil {
		t.Fatalf("LastForWeek: %v", err)
	}
	if run == nil {
		t.Fatal("expected a journal row")
	}
	if run.Status != journal.StatusSuccess {
		t.Errorf("status = %q", run.Status)
	}
	if run.Error == "" {
		t.Error("expected the persistence failure in the journal row")
	}
}
