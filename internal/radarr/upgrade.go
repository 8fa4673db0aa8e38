package radarr

import (
	"context"
	"fmt"
	"strings"
)

// ProfileByName finds a quality profile by case-insensitive name.
func ProfileByName(profiles []QualityProfile, name string) (QualityProfile, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, profile := range profiles {
		if strings.ToLower(strings.TrimSpace(profile.Name)) == want {
			return profile, true
		}
	}
	return QualityProfile{}, false
}

// UpgradeResult reports one profile change applied by UpgradeProfiles.
type UpgradeResult struct {
	Title string
	From  string
	To    string
}

// UpgradeProfiles moves every downloaded movie still on the fromProfile
// onto the toProfile. Per-movie update failures are collected and returned
// alongside the successes rather than aborting the sweep.
func UpgradeProfiles(ctx context.Context, svc Service, fromProfile, toProfile string) ([]UpgradeResult, []error) {
	profiles, err := svc.QualityProfiles(ctx)
	if err != nil {
		return nil, []error{fmt.Errorf("list quality profiles: %w", err)}
	}
	from, ok := ProfileByName(profiles, fromProfile)
	if !ok {
		return nil, []error{fmt.Errorf("quality profile %q not found", fromProfile)}
	}
	to, ok := ProfileByName(profiles, toProfile)
	if !ok {
		return nil, []error{fmt.Errorf("quality profile %q not found", toProfile)}
	}
	if from.ID == to.ID {
		return nil, nil
	}

	movies, err := svc.ListMovies(ctx)
	if err != nil {
		return nil, []error{fmt.Errorf("list movies: %w", err)}
	}

	var upgraded []UpgradeResult
	var failures []error
	for _, movie := range movies {
		if !movie.HasFile || movie.QualityProfileID != from.ID {
			continue
		}
		movie.QualityProfileID = to.ID
		if _, err := svc.UpdateMovie(ctx, movie); err != nil {
			failures = append(failures, fmt.Errorf("upgrade %q: %w", movie.Title, err))
			continue
		}
		upgraded = append(upgraded, UpgradeResult{Title: movie.Title, From: from.Name, To: to.Name})
	}
	return upgraded, failures
}
