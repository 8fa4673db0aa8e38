package rootfolder

import (
	"testing"

	"boxarr/internal/config"
	"boxarr/internal/logging"
	"boxarr/internal/radarr"
)

func TestSelectIsOrderFirst(t *testing.T) {
	// The numeric index must never override file order.
	cfg := config.RootFolders{
		Enabled: true,
		Rules: []config.RootFolderRule{
			{Genres: []string{"Horror"}, Folder: "/A", Index: 1},
			{Genres: []string{"Horror"}, Folder: "/B", Index: 99},
		},
	}
	selector := New(cfg, "/movies", logging.NewNop())
	if got := selector.Select([]string{"Horror"}); got != "/A" {
		t.Fatalf("Select = %q, want /A", got)
	}

	// Reversed file order flips the winner even though the indexes did not change.
	cfg.Rules[0], cfg.Rules[1] = cfg.Rules[1], cfg.Rules[0]
	selector = New(cfg, "/movies", logging.NewNop())
	if got := selector.Select([]string{"Horror"}); got != "/B" {
		t.Fatalf("Select after reorder = %q, want /B", got)
	}
}

func TestSelectMatchesGenresCaseInsensitively(t *testing.T) {
	cfg := config.RootFolders{
		Enabled: true,
		Rules: []config.RootFolderRule{
			{Genres: []string{"Animation", "Family"}, Folder: "/kids"},
			{Genres: []string{"horror"}, Folder: "/horror"},
		},
	}
	selector := New(cfg, "/movies", logging.NewNop())

	if got := selector.Select([]string{"HORROR", "Thriller"}); got != "/horror" {
		t.Errorf("Select = %q, want /horror", got)
	}
	if got := selector.Select([]string{"Drama", "family"}); got != "/kids" {
		t.Errorf("Select = %q, want /kids", got)
	}
	if got := selector.Select([]string{"Documentary"}); got != "/movies" {
		t.Errorf("Select = %q, want default", got)
	}
}

func TestSelectDisabledReturnsDefault(t *testing.T) {
	cfg := config.RootFolders{
		Enabled: false,
		Rules:   []config.RootFolderRule{{Genres: []string{"Horror"}, Folder: "/horror"}},
	}
	selector := New(cfg, "/movies", logging.NewNop())
	if got := selector.Select([]string{"Horror"}); got != "/movies" {
		t.Fatalf("Select = %q, want default", got)
	}
}

func TestSelectValidatedFallsBackForUnknownFolder(t *testing.T) {
	cfg := config.RootFolders{
		Enabled: true,
		Rules:   []config.RootFolderRule{{Genres: []string{"Horror"}, Folder: "/horror"}},
	}
	selector := New(cfg, "/movies", logging.NewNop())

	advertised := []radarr.RootFolder{{Path: "/movies"}, {Path: "/horror/"}}
	if got := selector.SelectValidated([]string{"Horror"}, advertised); got != "/horror" {
		t.Errorf("SelectValidated = %q, want /horror", got)
	}

	advertised = []radarr.RootFolder{{Path: "/movies"}}
	if got := selector.SelectValidated([]string{"Horror"}, advertised); got != "/movies" {
		t.Errorf("SelectValidated = %q, want default fallback", got)
	}
}
