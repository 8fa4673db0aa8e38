package config

import (
	"os"
	"strings"
)

// normalize expands paths, trims string fields, and applies environment
// overrides before validation runs.
func (c *Config) normalize() error {
	expanded, err := expandPath(c.Data.Directory)
	if err != nil {
		return err
	}
	c.Data.Directory = expanded

	c.Radarr.URL = strings.TrimRight(strings.TrimSpace(c.Radarr.URL), "/")
	c.Radarr.APIKey = strings.TrimSpace(c.Radarr.APIKey)
	if c.Radarr.APIKey == "" {
		c.Radarr.APIKey = strings.TrimSpace(os.Getenv("RADARR_API_KEY"))
	}
	c.Radarr.RootFolder = strings.TrimSpace(c.Radarr.RootFolder)
	c.Radarr.QualityProfile = strings.TrimSpace(c.Radarr.QualityProfile)
	c.Radarr.UpgradeProfile = strings.TrimSpace(c.Radarr.UpgradeProfile)

	c.BoxOffice.BaseURL = strings.TrimRight(strings.TrimSpace(c.BoxOffice.BaseURL), "/")

	c.AutoAdd.GenreFilterMode = strings.ToLower(strings.TrimSpace(c.AutoAdd.GenreFilterMode))
	c.AutoAdd.GenreAllowList = trimAll(c.AutoAdd.GenreAllowList)
	c.AutoAdd.GenreDenyList = trimAll(c.AutoAdd.GenreDenyList)
	c.AutoAdd.RatingAllowList = trimAll(c.AutoAdd.RatingAllowList)

	for i := range c.RootFolders.Rules {
		rule := &c.RootFolders.Rules[i]
		rule.Folder = strings.TrimSpace(rule.Folder)
		rule.Genres = trimAll(rule.Genres)
		if rule.Index == 0 {
			rule.Index = i + 1
		}
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
