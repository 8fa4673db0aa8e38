package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Radarr contains connection and add-behavior settings for the Radarr instance.
type Radarr struct {
	URL                 string `toml:"url"`
	APIKey              string `toml:"api_key"`
	RootFolder          string `toml:"root_folder"`
	QualityProfile      string `toml:"quality_profile"`
	UpgradeProfile      string `toml:"upgrade_profile"`
	MonitorOption       string `toml:"monitor_option"`
	MinimumAvailability string `toml:"minimum_availability"`
	SearchOnAdd         bool   `toml:"search_on_add"`
	RequestTimeout      int    `toml:"request_timeout"`
}

// BoxOffice contains settings for the weekly chart feed.
type BoxOffice struct {
	BaseURL        string  `toml:"base_url"`
	RequestTimeout int     `toml:"request_timeout"`
	RequestsPerMin float64 `toml:"requests_per_minute"`
}

// Scheduler contains timing configuration for the weekly reconciliation run.
// Weekday follows time.Weekday numbering (0 = Sunday).
type Scheduler struct {
	Enabled              bool `toml:"enabled"`
	Weekday              int  `toml:"weekday"`
	Hour                 int  `toml:"hour"`
	CheckIntervalSeconds int  `toml:"check_interval_seconds"`
	MisfireGraceMinutes  int  `toml:"misfire_grace_minutes"`
}

// AutoAdd contains eligibility rules for adding unmatched chart titles.
type AutoAdd struct {
	Enabled          bool     `toml:"enabled"`
	Limit            int      `toml:"limit"`
	GenreFilterMode  string   `toml:"genre_filter_mode"` // "", "allow", or "deny"
	GenreAllowList   []string `toml:"genre_allow_list"`
	GenreDenyList    []string `toml:"genre_deny_list"`
	RatingAllowList  []string `toml:"rating_allow_list"`
	IgnoreRereleases bool     `toml:"ignore_rereleases"`
}

// RootFolderRule maps a genre set to a destination folder. Rules are applied
// in the order they appear in the config file; Index is recorded for display
// only and never used to sort.
type RootFolderRule struct {
	Genres []string `toml:"genres"`
	Folder string   `toml:"folder"`
	Index  int      `toml:"index"`
}

// RootFolders contains the genre-based folder mapping.
type RootFolders struct {
	Enabled bool             `toml:"enabled"`
	Rules   []RootFolderRule `toml:"rules"`
}

// Matching contains tuning for the title matcher.
type Matching struct {
	MinConfidence float64 `toml:"min_confidence"`
}

// Data contains on-disk storage settings.
type Data struct {
	Directory            string `toml:"directory"`
	HistoryRetentionDays int    `toml:"history_retention_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunCompleted   bool   `toml:"run_completed"`
	RunFailed      bool   `toml:"run_failed"`
	MoviesAdded    bool   `toml:"movies_added"`
}

// Config encapsulates all configuration values for Boxarr.
//
// Configuration sections by subsystem:
//   - Radarr: library service connection and add behavior
//   - BoxOffice: weekly chart feed endpoint
//   - Scheduler: weekly trigger timing and misfire handling
//   - AutoAdd: eligibility filters for unmatched chart titles
//   - RootFolders: ordered genre to folder rules
//   - Matching: matcher confidence threshold
//   - Data: history/report storage and retention
//   - Logging: log format, level, and retention
//   - Notifications: ntfy push notification settings
type Config struct {
	Radarr        Radarr        `toml:"radarr"`
	BoxOffice     BoxOffice     `toml:"boxoffice"`
	Scheduler     Scheduler     `toml:"scheduler"`
	AutoAdd       AutoAdd       `toml:"auto_add"`
	RootFolders   RootFolders   `toml:"root_folders"`
	Matching      Matching      `toml:"matching"`
	Data          Data          `toml:"data"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/boxarr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path, the third reports whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("boxarr.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// HistoryDir returns the directory holding per-run history records.
func (c *Config) HistoryDir() string {
	return filepath.Join(c.Data.Directory, "history")
}

// ReportsDir returns the directory holding generated weekly reports.
func (c *Config) ReportsDir() string {
	return filepath.Join(c.Data.Directory, "weekly")
}

// LogDir returns the directory holding daemon logs.
func (c *Config) LogDir() string {
	return filepath.Join(c.Data.Directory, "logs")
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Data.Directory, c.HistoryDir(), c.ReportsDir(), c.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
