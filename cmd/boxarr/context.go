package main

import (
	"net/http"
	"strings"
	"sync"
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

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) library() (radarr.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return radarr.New(cfg.Radarr.URL, cfg.Radarr.APIKey,
		radarr.WithTimeout(time.Duration(cfg.Radarr.RequestTimeout)*time.Second))
}

func (c *commandContext) openJournal() (*journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return journal.Open(cfg.Data.Directory)
}

// newScheduler wires a fully equipped scheduler for one-shot CLI runs. The
// returned cleanup closes the run journal.
func (c *commandContext) newScheduler() (*scheduler.Scheduler, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	library, err := c.library()
	if err != nil {
		return nil, nil, err
	}

	feed, err := boxoffice.New(cfg.BoxOffice.BaseURL,
		boxoffice.WithRequestsPerMinute(int(cfg.BoxOffice.RequestsPerMin)),
		boxoffice.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.BoxOffice.RequestTimeout) * time.Second}))
	if err != nil {
		return nil, nil, err
	}

	journalStore, err := c.openJournal()
	if err != nil {
		return nil, nil, err
	}

	historyStore, err := history.NewStore(cfg.HistoryDir(), logger)
	if err != nil {
		journalStore.Close()
		return nil, nil, err
	}

	reportGen, err := reports.NewGenerator(cfg.ReportsDir(), historyStore, logger)
	if err != nil {
		journalStore.Close()
		return nil, nil, err
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
		return nil, nil, err
	}

	cleanup := func() {
		journalStore.Close()
	}
	return sched, cleanup, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
