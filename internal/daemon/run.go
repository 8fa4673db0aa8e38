package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"boxarr/internal/boxoffice"
	"boxarr/internal/config"
	"boxarr/internal/history"
	"boxarr/internal/journal"
	"boxarr/internal/logging"
	"boxarr/internal/notifications"
	"boxarr/internal/radarr"
	"boxarr/internal/reports"
	"boxarr/internal/scheduler"
)

// Run wires up the full daemon runtime and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, configPath string) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare data directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.LogDir(), Pattern: "*.log", Exclude: []string{"boxarr.log"}},
	)

	pidPath := filepath.Join(cfg.LogDir(), "boxarrd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	journalStore, err := journal.Open(cfg.Data.Directory)
	if err != nil {
		logger.Error("open run journal", logging.Error(err))
		return err
	}

	historyStore, err := history.NewStore(cfg.HistoryDir(), logger)
	if err != nil {
		journalStore.Close()
		return fmt.Errorf("open history store: %w", err)
	}

	reportGen, err := reports.NewGenerator(cfg.ReportsDir(), historyStore, logger)
	if err != nil {
		journalStore.Close()
		return fmt.Errorf("init report generator: %w", err)
	}

	library, err := radarr.New(cfg.Radarr.URL, cfg.Radarr.APIKey,
		radarr.WithTimeout(time.Duration(cfg.Radarr.RequestTimeout)*time.Second))
	if err != nil {
		journalStore.Close()
		return fmt.Errorf("init radarr client: %w", err)
	}

	feed, err := boxoffice.New(cfg.BoxOffice.BaseURL,
		boxoffice.WithRequestsPerMinute(int(cfg.BoxOffice.RequestsPerMin)),
		boxoffice.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.BoxOffice.RequestTimeout) * time.Second}))
	if err != nil {
		journalStore.Close()
		return fmt.Errorf("init chart client: %w", err)
	}

	sched, err := scheduler.New(cfg, scheduler.Deps{
		Feed:     feed,
		Library:  library,
		History:  historyStore,
		Journal:  journalStore,
		Reports:  reportGen,
		Notifier: notifications.NewService(cfg.Notifications),
		Logger:   logger,
	})
	if err != nil {
		journalStore.Close()
		return fmt.Errorf("init scheduler: %w", err)
	}

	d, err := New(cfg, configPath, sched, journalStore, logger)
	if err != nil {
		journalStore.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("boxarr daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
