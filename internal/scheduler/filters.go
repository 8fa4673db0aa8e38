package scheduler

import (
	"fmt"
	"strings"

	"boxarr/internal/config"
	"boxarr/internal/radarr"
)

// Filter skip reasons recorded in run records.
const (
	SkipNoCandidates   = "no candidates found"
	SkipRerelease      = "re-release of an older film"
	SkipGenreDenied    = "genre on deny list"
	SkipGenreNotListed = "no genre on allow list"
	SkipRating         = "rating not on allow list"
)

// evaluateCandidate applies the add-eligibility filters in order and
// returns a skip reason, or ok when the candidate passes all of them.
func evaluateCandidate(candidate radarr.Candidate, targetYear int, cfg config.AutoAdd) (reason string, ok bool) {
	// Re-release cutoff: anything older than the year before the chart's
	// is a revival screening, not a new film.
	if cfg.IgnoreRereleases && candidate.Year > 0 && candidate.Year < targetYear-1 {
		return fmt.Sprintf("%s (%d)", SkipRerelease, candidate.Year), false
	}

	switch strings.ToLower(strings.TrimSpace(cfg.GenreFilterMode)) {
	case "deny":
		if genre, denied := anyGenreIn(candidate.Genres, cfg.GenreDenyList); denied {
			return fmt.Sprintf("%s (%s)", SkipGenreDenied, genre), false
		}
	case "allow":
		if _, allowed := anyGenreIn(candidate.Genres, cfg.GenreAllowList); !allowed {
			return SkipGenreNotListed, false
		}
	}

	if len(cfg.RatingAllowList) > 0 {
		if !containsFold(cfg.RatingAllowList, candidate.Certification) {
			rating := candidate.Certification
			if rating == "" {
				rating = "unrated"
			}
			return fmt.Sprintf("%s (%s)", SkipRating, rating), false
		}
	}
	return "", true
}

// anyGenreIn returns the first candidate genre present in list.
func anyGenreIn(genres, list []string) (string, bool) {
	for _, genre := range genres {
		if containsFold(list, genre) {
			return genre, true
		}
	}
	return "", false
}

func containsFold(list []string, value string) bool {
	value = strings.TrimSpace(value)
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}
