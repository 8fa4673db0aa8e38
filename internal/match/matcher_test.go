package match

import (
	"testing"

	"boxarr/internal/boxoffice"
	"boxarr/internal/radarr"
)

func library(titlesAndYears ...any) []radarr.Movie {
	var movies []radarr.Movie
	for i := 0; i < len(titlesAndYears); i += 2 {
		movies = append(movies, radarr.Movie{
			ID:    int64(i/2 + 1),
			Title: titlesAndYears[i].(string),
			Year:  titlesAndYears[i+1].(int),
		})
	}
	return movies
}

func TestMatchOneExact(t *testing.T) {
	m := New(0)
	cases := []string{"The Batman", "the batman", "THE BATMAN", "  The Batman  "}
	movies := library("The Batman", 2022)
	for _, title := range cases {
		result := m.MatchOne(title, movies)
		if result.Method != MethodExact || result.Confidence != 1.0 {
			t.Errorf("MatchOne(%q) = %s/%.2f, want exact/1.0", title, result.Method, result.Confidence)
		}
		if !result.Matched() || result.Movie.Title != "The Batman" {
			t.Errorf("MatchOne(%q) movie = %+v", title, result.Movie)
		}
	}
}

func TestMatchOneSpecialCases(t *testing.T) {
	cases := []struct {
		title   string
		library []radarr.Movie
		want    string
	}{
		{
			// Colon dropped by the chart source.
			title:   "Mission Impossible: Dead Reckoning",
			library: library("Mission Impossible Dead Reckoning", 2023),
			want:    "Mission Impossible Dead Reckoning",
		},
		{
			// Year in parentheses picks the right release.
			title:   "Dune (1984)",
			library: library("Dune", 2021, "Dune", 1984),
			want:    "Dune",
		},
		{
			// Roman numeral sequel vs digit.
			title:   "Rocky 3",
			library: library("Rocky III", 1982),
			want:    "Rocky III",
		},
	}
	m := New(0)
	for _, tc := range cases {
		result := m.MatchOne(tc.title, tc.library)
		if result.Method != MethodSpecial || result.Confidence != 0.85 {
			t.Errorf("MatchOne(%q) = %s/%.2f, want special/0.85", tc.title, result.Method, result.Confidence)
			continue
		}
		if result.Movie.Title != tc.want {
			t.Errorf("MatchOne(%q) movie = %q, want %q", tc.title, result.Movie.Title, tc.want)
		}
	}
	// The parenthesized year must select the matching release, not the remake.
	result := m.MatchOne("Dune (1984)", library("Dune", 2021, "Dune", 1984))
	if result.Movie == nil || result.Movie.Year != 1984 {
		t.Errorf("year disambiguation picked %+v", result.Movie)
	}
}

func TestMatchOneNormalized(t *testing.T) {
	cases := []struct {
		title   string
		library []radarr.Movie
	}{
		{"Batman", library("The Batman", 2022)},
		{"Fantastic Four", library("Fantastic 4", 2015)},
		{"Fantastic 4", library("Fantastic Four", 2015)},
	}
	m := New(0)
	for _, tc := range cases {
		result := m.MatchOne(tc.title, tc.library)
		if result.Method != MethodNormalized || result.Confidence != 0.95 {
			t.Errorf("MatchOne(%q) = %s/%.2f, want normalized/0.95", tc.title, result.Method, result.Confidence)
		}
	}
}

func TestMatchOneFuzzy(t *testing.T) {
	m := New(0.9)
	result := m.MatchOne("Oppenheimr", library("Oppenheimer", 2023))
	if result.Method != MethodFuzzy {
		t.Fatalf("method = %s, confidence %.2f", result.Method, result.Confidence)
	}
	if result.Confidence < 0.9 || result.Confidence > 1.0 {
		t.Errorf("confidence = %.3f", result.Confidence)
	}

	// Below the threshold nothing is accepted.
	strict := New(0.99)
	result = strict.MatchOne("Oppenheimr", library("Oppenheimer", 2023))
	if result.Method != MethodNone || result.Matched() {
		t.Errorf("strict result = %+v", result)
	}
}

func TestFuzzyYearBonusLiftsOverThreshold(t *testing.T) {
	// The raw similarity sits just below the threshold; the matching year
	// adds 0.1 and lifts it over.
	m := New(0.95)
	m.BuildIndex(library("Oppenheimer", 2023))

	if _, _, ok := m.lookupFuzzy("Oppenheimr"); ok {
		t.Fatal("expected miss without a year to confirm")
	}
	movie, score, ok := m.lookupFuzzy("Oppenheimr (2023)")
	if !ok {
		t.Fatal("expected hit with a matching year")
	}
	if movie.Title != "Oppenheimer" {
		t.Errorf("movie = %q", movie.Title)
	}
	if score < 0.95 || score > 1.0 {
		t.Errorf("score = %.3f", score)
	}
}

func TestMatchOneNone(t *testing.T) {
	m := New(0)
	result := m.MatchOne("Completely Unknown Movie", library("The Batman", 2022))
	if result.Method != MethodNone || result.Confidence != 0.0 || result.Matched() {
		t.Errorf("result = %+v", result)
	}
}

func TestBuildIndexPrefersNonSequelForBaseTitle(t *testing.T) {
	m := New(0)

	// The base key must resolve to the non-sequel regardless of library order.
	for _, movies := range [][]radarr.Movie{
		library("Scream VI", 2023, "Scream", 1996),
		library("Scream", 1996, "Scream VI", 2023),
	} {
		m.BuildIndex(movies)
		movie, ok := m.lookup("scream")
		if !ok {
			t.Fatal("base key missing from index")
		}
		if movie.Year != 1996 {
			t.Fatalf("base key resolved to %+v", movie)
		}
	}
}

func TestMatchAllPreservesRankOrder(t *testing.T) {
	chart := []boxoffice.Entry{
		{Rank: 1, Title: "The Batman"},
		{Rank: 2, Title: "Unknown Movie 2024"},
		{Rank: 3, Title: "Uncharted"},
	}
	movies := library("The Batman", 2022, "Uncharted", 2022)

	m := New(0)
	results := m.MatchAll(chart, movies)
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	for i, result := range results {
		if result.Entry.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, result.Entry.Rank)
		}
	}
	if results[0].Method != MethodExact || results[0].Confidence != 1.0 {
		t.Errorf("rank 1 = %s/%.2f", results[0].Method, results[0].Confidence)
	}
	if results[1].Method != MethodNone || results[1].Matched() {
		t.Errorf("rank 2 = %+v", results[1])
	}
	if !results[2].Matched() {
		t.Errorf("rank 3 unmatched")
	}
}
