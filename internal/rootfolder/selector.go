// Package rootfolder picks the destination storage location for a newly
// added movie from an ordered genre rule list.
package rootfolder

import (
	"log/slog"
	"strings"

	"boxarr/internal/config"
	"boxarr/internal/logging"
	"boxarr/internal/radarr"
)

// Selector evaluates root-folder rules in insertion order. The numeric
// index persisted with each rule is display metadata and never used to
// re-sort; the first rule whose genres intersect the candidate's wins.
type Selector struct {
	enabled       bool
	rules         []config.RootFolderRule
	defaultFolder string
	logger        *slog.Logger
}

// New creates a Selector from configuration.
func New(cfg config.RootFolders, defaultFolder string, logger *slog.Logger) *Selector {
	return &Selector{
		enabled:       cfg.Enabled,
		rules:         cfg.Rules,
		defaultFolder: defaultFolder,
		logger:        logging.NewComponentLogger(logger, "rootfolder"),
	}
}

// Select returns the folder for a candidate's genre set. Rules are walked
// top to bottom; with mapping disabled or no rule matching, the default
// folder is returned.
func (s *Selector) Select(genres []string) string {
	if !s.enabled || len(s.rules) == 0 {
		return s.defaultFolder
	}
	candidate := make(map[string]struct{}, len(genres))
	for _, genre := range genres {
		candidate[strings.ToLower(strings.TrimSpace(genre))] = struct{}{}
	}
	for _, rule := range s.rules {
		for _, genre := range rule.Genres {
			if _, ok := candidate[strings.ToLower(strings.TrimSpace(genre))]; ok {
				return rule.Folder
			}
		}
	}
	return s.defaultFolder
}

// SelectValidated picks a folder and checks it against the folders the
// library service currently advertises. An unknown folder logs a warning
// and falls back to the default.
func (s *Selector) SelectValidated(genres []string, advertised []radarr.RootFolder) string {
	selected := s.Select(genres)
	if selected == s.defaultFolder || len(advertised) == 0 {
		return selected
	}
	for _, folder := range advertised {
		if pathsEqual(folder.Path, selected) {
			return selected
		}
	}
	s.logger.Warn("selected root folder not advertised, using default",
		logging.String("selected", selected),
		logging.String("default", s.defaultFolder),
	)
	return s.defaultFolder
}

func pathsEqual(a, b string) bool {
	return strings.TrimRight(strings.TrimSpace(a), "/") == strings.TrimRight(strings.TrimSpace(b), "/")
}
