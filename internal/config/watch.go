package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SchedulerUpdate carries re-validated scheduler settings picked up from a
// config file change at runtime. Only scheduler timing is mutable while the
// daemon runs; everything else requires a restart.
type SchedulerUpdate struct {
	Scheduler Scheduler
}

// Watch monitors the config file and invokes apply with re-validated
// scheduler settings whenever the file changes. Invalid edits are logged and
// ignored; the previous settings stay in effect. Watch blocks until ctx is
// cancelled.
func Watch(ctx context.Context, path string, logger *slog.Logger, apply func(SchedulerUpdate)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file so editors that replace the
	// file (write temp + rename) do not drop the watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}

	// Editors emit bursts of events for one save; debounce before reloading.
	const settle = 500 * time.Millisecond
	var pending *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(settle, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		case <-reload:
			cfg, _, exists, err := Load(path)
			if err != nil {
				logger.Warn("config change rejected; keeping previous settings",
					"path", path, "error", err)
				continue
			}
			if !exists {
				continue
			}
			logger.Info("scheduler settings reloaded",
				"weekday", cfg.Scheduler.Weekday,
				"hour", cfg.Scheduler.Hour,
				"enabled", cfg.Scheduler.Enabled)
			apply(SchedulerUpdate{Scheduler: cfg.Scheduler})
		}
	}
}
