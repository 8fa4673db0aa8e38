package config

const (
	defaultRadarrURL            = "http://localhost:7878"
	defaultRadarrRootFolder     = "/movies"
	defaultQualityProfile       = "HD-1080p"
	defaultUpgradeProfile       = "Ultra-HD"
	defaultMonitorOption        = "movieOnly"
	defaultMinimumAvailability  = "announced"
	defaultRadarrTimeout        = 30
	defaultBoxOfficeBaseURL     = "https://www.boxofficemojo.com"
	defaultBoxOfficeTimeout     = 30
	defaultBoxOfficeRatePerMin  = 20
	defaultSchedulerWeekday     = 2 // Tuesday
	defaultSchedulerHour        = 23
	defaultCheckIntervalSeconds = 60
	defaultMisfireGraceMinutes  = 60
	defaultAutoAddLimit         = 10
	defaultMinConfidence        = 0.95
	defaultDataDirectory        = "~/.local/share/boxarr"
	defaultHistoryRetentionDays = 90
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
	defaultNotifyTimeout        = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Radarr: Radarr{
			URL:                 defaultRadarrURL,
			RootFolder:          defaultRadarrRootFolder,
			QualityProfile:      defaultQualityProfile,
			UpgradeProfile:      defaultUpgradeProfile,
			MonitorOption:       defaultMonitorOption,
			MinimumAvailability: defaultMinimumAvailability,
			SearchOnAdd:         true,
			RequestTimeout:      defaultRadarrTimeout,
		},
		BoxOffice: BoxOffice{
			BaseURL:        defaultBoxOfficeBaseURL,
			RequestTimeout: defaultBoxOfficeTimeout,
			RequestsPerMin: defaultBoxOfficeRatePerMin,
		},
		Scheduler: Scheduler{
			Enabled:              true,
			Weekday:              defaultSchedulerWeekday,
			Hour:                 defaultSchedulerHour,
			CheckIntervalSeconds: defaultCheckIntervalSeconds,
			MisfireGraceMinutes:  defaultMisfireGraceMinutes,
		},
		AutoAdd: AutoAdd{
			Limit: defaultAutoAddLimit,
		},
		Matching: Matching{
			MinConfidence: defaultMinConfidence,
		},
		Data: Data{
			Directory:            defaultDataDirectory,
			HistoryRetentionDays: defaultHistoryRetentionDays,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunCompleted:   true,
			RunFailed:      true,
			MoviesAdded:    true,
		},
	}
}
