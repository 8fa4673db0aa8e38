// Package scheduler orchestrates reconciliation runs: fetch the weekly
// chart, match it against the library, add eligible missing titles, and
// persist the outcome. One Scheduler value owns its collaborators; there
// is no global state and at most one run is active at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"boxarr/internal/boxoffice"
	"boxarr/internal/config"
	"boxarr/internal/history"
	"boxarr/internal/journal"
	"boxarr/internal/logging"
	"boxarr/internal/match"
	"boxarr/internal/notifications"
	"boxarr/internal/radarr"
	"boxarr/internal/reports"
	"boxarr/internal/rootfolder"
)

// State identifies where in the run pipeline the scheduler currently is.
type State string

const (
	StateIdle         State = "idle"
	StateFetching     State = "fetching"
	StateMatching     State = "matching"
	StateFiltering    State = "filtering"
	StateAdding       State = "adding"
	StateRegenerating State = "regenerating"
	StatePersisting   State = "persisting"
)

// ReportPublisher writes the weekly report for a completed run. Failures
// are logged and never fail the run.
type ReportPublisher interface {
	Publish(ctx context.Context, record history.RunRecord) error
}

var _ ReportPublisher = (*reports.Generator)(nil)

// Deps bundles the scheduler's collaborators. Feed, Library, Selector and
// History are required; Journal, Reports and Notifier are optional.
type Deps struct {
	Feed     boxoffice.Feed
	Library  radarr.Service
	Selector *rootfolder.Selector
	History  *history.Store
	Journal  *journal.Store
	Reports  ReportPublisher
	Notifier notifications.Service
	Logger   *slog.Logger
}

// Scheduler runs the reconciliation pipeline, either on its timer or from
// a manual trigger.
type Scheduler struct {
	cfg      *config.Config
	feed     boxoffice.Feed
	library  radarr.Service
	matcher  *match.Matcher
	selector *rootfolder.Selector
	history  *history.Store
	journal  *journal.Store
	reports  ReportPublisher
	notifier notifications.Service
	logger   *slog.Logger

	newRunID func() string
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	state    State
	lastFire time.Time

	loopMu   sync.Mutex
	loopStop context.CancelFunc
	wg       sync.WaitGroup

	schedMu  sync.RWMutex
	schedule config.Scheduler
}

// New constructs a Scheduler.
func New(cfg *config.Config, deps Deps) (*Scheduler, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if deps.Feed == nil || deps.Library == nil || deps.History == nil {
		return nil, errors.New("feed, library, and history are required")
	}
	selector := deps.Selector
	if selector == nil {
		selector = rootfolder.New(cfg.RootFolders, cfg.Radarr.RootFolder, deps.Logger)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg.Notifications)
	}
	return &Scheduler{
		cfg:      cfg,
		feed:     deps.Feed,
		library:  deps.Library,
		matcher:  match.New(cfg.Matching.MinConfidence),
		selector: selector,
		history:  deps.History,
		journal:  deps.Journal,
		reports:  deps.Reports,
		notifier: notifier,
		logger:   logging.NewComponentLogger(deps.Logger, "scheduler"),
		newRunID: func() string { return uuid.NewString() },
		now:      time.Now,
		state:    StateIdle,
		schedule: cfg.Scheduler,
	}, nil
}

// State returns the scheduler's current pipeline state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether a run is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Reconcile runs the pipeline for an explicit week. A zero year or week
// resolves to the current chart week, the same target the scheduled loop
// and TriggerNow use. Re-running an already reconciled week is allowed
// and idempotent.
func (s *Scheduler) Reconcile(ctx context.Context, year, week int) (*history.RunRecord, error) {
	if year == 0 || week == 0 {
		year, week = s.feed.CurrentWeek()
	}
	return s.run(ctx, year, week, journal.TriggerManual)
}

// TriggerNow reconciles the current chart week immediately. It is
// rejected before any I/O if that week already has a run record.
func (s *Scheduler) TriggerNow(ctx context.Context) (*history.RunRecord, error) {
	year, week := s.feed.CurrentWeek()
	if s.history.HasLatest(year, week) {
		return nil, fmt.Errorf("%w: %s", ErrWeekAlreadyReconciled, boxoffice.FormatWeek(year, week))
	}
	return s.run(ctx, year, week, journal.TriggerManual)
}

// run executes the full pipeline for one week. It holds the run slot for
// the whole span; concurrent triggers get ErrRunInProgress.
func (s *Scheduler) run(ctx context.Context, year, week int, trigger string) (*history.RunRecord, error) {
	if !s.beginRun() {
		return nil, ErrRunInProgress
	}
	defer s.endRun()

	runID := s.newRunID()
	weekLabel := boxoffice.FormatWeek(year, week)
	logger := s.logger.With(logging.String("run_id", runID), logging.String("week", weekLabel))
	logger.Info("run started", logging.String("trigger", trigger))

	s.journalBegin(ctx, runID, year, week, trigger, logger)

	// Chart fetch and library snapshot failures are fatal: no run record
	// is written for the attempt.
	s.setState(StateFetching)
	chart, err := s.feed.FetchWeek(ctx, year, week)
	if err != nil {
		return nil, s.failRun(ctx, runID, weekLabel, err, logger)
	}
	movies, err := s.library.ListMovies(ctx)
	if err != nil {
		return nil, s.failRun(ctx, runID, weekLabel, &LibraryError{Step: "snapshot", Err: err}, logger)
	}

	s.setState(StateMatching)
	results := s.matcher.MatchAll(chart, movies)

	var added []string
	var skips []history.Skip
	if s.cfg.AutoAdd.Enabled {
		s.setState(StateFiltering)
		added, skips = s.autoAdd(ctx, results, year, logger)

		// Adds change the library; re-fetch and re-match so the record
		// reflects the new state.
		if len(added) > 0 {
			s.setState(StateMatching)
			if refreshed, err := s.library.ListMovies(ctx); err != nil {
				logger.Warn("library re-fetch after adds failed, record reflects pre-add state", logging.Error(err))
			} else {
				results = s.matcher.MatchAll(chart, refreshed)
			}
		}
	}

	record := s.buildRecord(runID, year, week, results, added, skips)

	s.setState(StateRegenerating)
	if s.reports != nil {
		if err := s.reports.Publish(ctx, record); err != nil {
			logger.Warn("report regeneration failed", logging.Error(err))
		}
	}

	s.setState(StatePersisting)
	var runErr error
	if _, err := s.history.Write(record); err != nil {
		persistErr := &PersistenceError{Err: err}
		logger.Error("run record not persisted", logging.Error(persistErr))
		runErr = persistErr
	}
	s.history.Prune(s.cfg.Data.HistoryRetentionDays)

	// A failed history write does not fail the run, but the ledger keeps
	// the error so it surfaces in the run listing.
	s.journalFinish(ctx, runID, journal.StatusSuccess, record, runErr, logger)

	if err := s.notifier.NotifyRunCompleted(ctx, weekLabel, record.MatchedCount, record.UnmatchedCount, len(added)); err != nil {
		logger.Warn("run notification failed", logging.Error(err))
	}
	if len(added) > 0 {
		if err := s.notifier.NotifyMoviesAdded(ctx, weekLabel, added); err != nil {
			logger.Warn("add notification failed", logging.Error(err))
		}
	}

	logger.Info("run complete",
		logging.Int("matched", record.MatchedCount),
		logging.Int("unmatched", record.UnmatchedCount),
		logging.Int("added", len(added)),
	)
	return &record, runErr
}

// autoAdd walks unmatched entries in rank order, truncated to the
// configured limit, applies the eligibility filters, and adds survivors.
// Per-item failures become recorded skips; they never abort the run.
func (s *Scheduler) autoAdd(ctx context.Context, results []match.Result, targetYear int, logger *slog.Logger) ([]string, []history.Skip) {
	var pending []match.Result
	for _, result := range results {
		if !result.Matched() {
			pending = append(pending, result)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	limit := s.cfg.AutoAdd.Limit
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	profileID, folders, err := s.addContext(ctx)
	if err != nil {
		logger.Error("auto-add unavailable", logging.Error(err))
		skips := make([]history.Skip, 0, len(pending))
		for _, result := range pending {
			skips = append(skips, history.Skip{Title: result.Entry.Title, Reason: "library unavailable: " + err.Error()})
		}
		return nil, skips
	}

	s.setState(StateAdding)
	var added []string
	var skips []history.Skip
	for _, result := range pending {
		title := result.Entry.Title
		candidates, err := s.library.SearchByTitle(ctx, title)
		if err != nil {
			logger.Warn("candidate search failed", logging.String("title", title), logging.Error(err))
			skips = append(skips, history.Skip{Title: title, Reason: "search failed: " + err.Error()})
			continue
		}
		if len(candidates) == 0 {
			skips = append(skips, history.Skip{Title: title, Reason: SkipNoCandidates})
			continue
		}
		candidate := candidates[0]

		if reason, ok := evaluateCandidate(candidate, targetYear, s.cfg.AutoAdd); !ok {
			logger.Info("candidate filtered", logging.String("title", title), logging.String("reason", reason))
			skips = append(skips, history.Skip{Title: title, Reason: reason})
			continue
		}

		folder := s.selector.SelectValidated(candidate.Genres, folders)
		movie, err := s.library.AddMovie(ctx, radarr.AddRequest{
			Candidate:           candidate,
			QualityProfileID:    profileID,
			RootFolder:          folder,
			Monitored:           true,
			MonitorOption:       s.cfg.Radarr.MonitorOption,
			MinimumAvailability: s.cfg.Radarr.MinimumAvailability,
			SearchNow:           s.cfg.Radarr.SearchOnAdd,
		})
		if err != nil {
			logger.Warn("add failed", logging.String("title", title), logging.Error(err))
			skips = append(skips, history.Skip{Title: title, Reason: "add failed: " + err.Error()})
			continue
		}
		logger.Info("movie added",
			logging.String("title", movie.Title),
			logging.String("folder", folder),
		)
		added = append(added, movie.Title)
	}
	return added, skips
}

// addContext resolves the run's quality profile and the advertised root
// folders once per run.
func (s *Scheduler) addContext(ctx context.Context) (int64, []radarr.RootFolder, error) {
	profiles, err := s.library.QualityProfiles(ctx)
	if err != nil {
		return 0, nil, &LibraryError{Step: "quality profiles", Err: err}
	}
	profile, ok := radarr.ProfileByName(profiles, s.cfg.Radarr.QualityProfile)
	if !ok {
		return 0, nil, fmt.Errorf("quality profile %q not configured in radarr", s.cfg.Radarr.QualityProfile)
	}
	folders, err := s.library.RootFolders(ctx)
	if err != nil {
		return 0, nil, &LibraryError{Step: "root folders", Err: err}
	}
	return profile.ID, folders, nil
}

func (s *Scheduler) buildRecord(runID string, year, week int, results []match.Result, added []string, skips []history.Skip) history.RunRecord {
	record := history.RunRecord{
		RunID:           runID,
		Timestamp:       s.now(),
		Year:            year,
		Week:            week,
		Status:          "success",
		TotalCount:      len(results),
		StatusBreakdown: make(map[radarr.DisplayStatus]int),
		AddedTitles:     added,
		Skips:           skips,
	}
	for _, result := range results {
		if result.Matched() {
			status := result.Movie.DisplayStatus()
			record.MatchedCount++
			record.StatusBreakdown[status]++
			record.MatchedItems = append(record.MatchedItems, history.MatchedItem{
				Rank:       result.Entry.Rank,
				Title:      result.Entry.Title,
				MovieTitle: result.Movie.Title,
				Year:       result.Movie.Year,
				Confidence: result.Confidence,
				Method:     string(result.Method),
				Status:     status,
			})
			continue
		}
		record.UnmatchedCount++
		record.UnmatchedItems = append(record.UnmatchedItems, history.UnmatchedItem{
			Rank:  result.Entry.Rank,
			Title: result.Entry.Title,
		})
	}
	return record
}

// failRun handles a fatal run error: no run record is written.
func (s *Scheduler) failRun(ctx context.Context, runID, weekLabel string, err error, logger *slog.Logger) error {
	logger.Error("run failed", logging.Error(err))
	s.journalFinish(ctx, runID, journal.StatusFailed, history.RunRecord{}, err, logger)
	if notifyErr := s.notifier.NotifyRunFailed(ctx, weekLabel, err); notifyErr != nil {
		logger.Warn("failure notification failed", logging.Error(notifyErr))
	}
	return err
}

func (s *Scheduler) journalBegin(ctx context.Context, runID string, year, week int, trigger string, logger *slog.Logger) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Begin(ctx, runID, year, week, trigger); err != nil {
		logger.Warn("journal insert failed", logging.Error(err))
	}
}

func (s *Scheduler) journalFinish(ctx context.Context, runID, status string, record history.RunRecord, runErr error, logger *slog.Logger) {
	if s.journal == nil {
		return
	}
	err := s.journal.Finish(ctx, runID, status,
		record.TotalCount, record.MatchedCount, record.UnmatchedCount,
		record.AddedTitles, runErr,
	)
	if err != nil {
		logger.Warn("journal update failed", logging.Error(err))
	}
}

func (s *Scheduler) beginRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) endRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.state = StateIdle
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
