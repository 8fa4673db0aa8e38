package config

import (
	"errors"
	"fmt"
	"strings"
)

var validMonitorOptions = map[string]struct{}{
	"movieOnly":          {},
	"movieAndCollection": {},
	"none":               {},
}

var validAvailabilities = map[string]struct{}{
	"announced": {},
	"inCinemas": {},
	"released":  {},
	"preDb":     {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRadarr(); err != nil {
		return err
	}
	if err := c.validateBoxOffice(); err != nil {
		return err
	}
	if err := c.ValidateScheduler(); err != nil {
		return err
	}
	if err := c.validateAutoAdd(); err != nil {
		return err
	}
	if err := c.validateRootFolders(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateData(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRadarr() error {
	if c.Radarr.URL == "" {
		return errors.New("radarr.url must be set")
	}
	if c.Radarr.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/boxarr/config.toml"
		}
		return fmt.Errorf("radarr.api_key is required. Set RADARR_API_KEY env var or edit %s (create with 'boxarr config init')", defaultPath)
	}
	if c.Radarr.RootFolder == "" {
		return errors.New("radarr.root_folder must be set")
	}
	if c.Radarr.QualityProfile == "" {
		return errors.New("radarr.quality_profile must be set")
	}
	if _, ok := validMonitorOptions[c.Radarr.MonitorOption]; !ok {
		return fmt.Errorf("radarr.monitor_option: unsupported value %q", c.Radarr.MonitorOption)
	}
	if _, ok := validAvailabilities[c.Radarr.MinimumAvailability]; !ok {
		return fmt.Errorf("radarr.minimum_availability: unsupported value %q", c.Radarr.MinimumAvailability)
	}
	if c.Radarr.RequestTimeout <= 0 {
		return errors.New("radarr.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateBoxOffice() error {
	if c.BoxOffice.BaseURL == "" {
		return errors.New("boxoffice.base_url must be set")
	}
	if c.BoxOffice.RequestTimeout <= 0 {
		return errors.New("boxoffice.request_timeout must be positive (seconds)")
	}
	if c.BoxOffice.RequestsPerMin <= 0 {
		return errors.New("boxoffice.requests_per_minute must be positive")
	}
	return nil
}

// ValidateScheduler checks only the scheduler section. The config watcher
// re-runs this check before applying runtime changes to scheduler fields.
func (c *Config) ValidateScheduler() error {
	if c.Scheduler.Weekday < 0 || c.Scheduler.Weekday > 6 {
		return errors.New("scheduler.weekday must be between 0 (Sunday) and 6 (Saturday)")
	}
	if c.Scheduler.Hour < 0 || c.Scheduler.Hour > 23 {
		return errors.New("scheduler.hour must be between 0 and 23")
	}
	if c.Scheduler.CheckIntervalSeconds <= 0 {
		return errors.New("scheduler.check_interval_seconds must be positive")
	}
	if c.Scheduler.MisfireGraceMinutes <= 0 {
		return errors.New("scheduler.misfire_grace_minutes must be positive")
	}
	return nil
}

func (c *Config) validateAutoAdd() error {
	if c.AutoAdd.Limit < 1 || c.AutoAdd.Limit > 10 {
		return errors.New("auto_add.limit must be between 1 and 10")
	}
	switch c.AutoAdd.GenreFilterMode {
	case "", "allow", "deny":
	default:
		return fmt.Errorf("auto_add.genre_filter_mode: unsupported value %q (use \"allow\" or \"deny\")", c.AutoAdd.GenreFilterMode)
	}
	return nil
}

func (c *Config) validateRootFolders() error {
	for i, rule := range c.RootFolders.Rules {
		if strings.TrimSpace(rule.Folder) == "" {
			return fmt.Errorf("root_folders.rules[%d].folder must be set", i)
		}
		if len(rule.Genres) == 0 {
			return fmt.Errorf("root_folders.rules[%d].genres must not be empty", i)
		}
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.MinConfidence < 0 || c.Matching.MinConfidence > 1 {
		return errors.New("matching.min_confidence must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateData() error {
	if c.Data.Directory == "" {
		return errors.New("data.directory must be set")
	}
	if c.Data.HistoryRetentionDays < 7 || c.Data.HistoryRetentionDays > 365 {
		return errors.New("data.history_retention_days must be between 7 and 365")
	}
	return nil
}
