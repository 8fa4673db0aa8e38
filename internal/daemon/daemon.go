package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"boxarr/internal/config"
	"boxarr/internal/journal"
	"boxarr/internal/logging"
	"boxarr/internal/scheduler"
)

// Daemon owns the scheduler loop and the config watcher, and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	journal    *journal.Store
	sched      *scheduler.Scheduler

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool             `json:"running"`
	State        scheduler.State  `json:"state"`
	Schedule     config.Scheduler `json:"schedule"`
	LastRun      *journal.Run     `json:"last_run,omitempty"`
	JournalPath  string           `json:"journal_path"`
	LockFilePath string           `json:"lock_file_path"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, configPath string, sched *scheduler.Scheduler, store *journal.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || sched == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, scheduler, journal store, and logger")
	}

	lockPath := filepath.Join(cfg.Data.Directory, "boxarrd.lock")
	return &Daemon{
		cfg:        cfg,
		configPath: configPath,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		journal:    store,
		sched:      sched,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, launches the scheduler loop, and begins
// watching the config file for scheduler changes.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another boxarr daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.sched.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start scheduler: %w", err)
	}
	d.cancel = cancel

	if d.configPath != "" {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			err := config.Watch(runCtx, d.configPath, d.logger, func(update config.SchedulerUpdate) {
				d.sched.UpdateSchedule(update.Scheduler)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Warn("config watcher stopped", logging.Error(err))
			}
		}()
	}

	d.running.Store(true)
	d.logger.Info("boxarr daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts the scheduler loop, stops the config watcher, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.sched.Stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("boxarr daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// TriggerRun reconciles the requested week immediately. Zero year and week
// reconcile the current chart week with the already-reconciled guard.
func (d *Daemon) TriggerRun(ctx context.Context, year, week int) error {
	if year == 0 && week == 0 {
		_, err := d.sched.TriggerNow(ctx)
		return err
	}
	_, err := d.sched.Reconcile(ctx, year, week)
	return err
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		State:        d.sched.State(),
		Schedule:     d.sched.Schedule(),
		JournalPath:  d.journal.Path(),
		LockFilePath: d.lockPath,
	}
	runs, err := d.journal.Recent(ctx, 1)
	if err != nil {
		d.logger.Warn("failed to read run journal", logging.Error(err))
	} else if len(runs) > 0 {
		status.LastRun = &runs[0]
	}
	return status
}
