// Package match links chart titles to library movies. A Matcher builds a
// lookup index over the library snapshot and classifies each chart title
// through a cascade of strategies, cheapest and most certain first, each
// tagged with a confidence score.
package match

import (
	"strings"

	"boxarr/internal/boxoffice"
	"boxarr/internal/radarr"
	"boxarr/internal/titles"
)

// Method identifies which cascade stage produced a match.
type Method string

const (
	MethodExact      Method = "exact"
	MethodSpecial    Method = "special"
	MethodNormalized Method = "normalized"
	MethodFuzzy      Method = "fuzzy"
	MethodNone       Method = "none"
)

// Confidence assigned by each non-fuzzy stage.
const (
	confidenceExact      = 1.0
	confidenceSpecial    = 0.85
	confidenceNormalized = 0.95
)

// DefaultMinConfidence is the fuzzy acceptance threshold when none is
// configured.
const DefaultMinConfidence = 0.95

// Result links one chart entry to at most one library movie.
type Result struct {
	Entry      boxoffice.Entry `json:"entry"`
	Movie      *radarr.Movie   `json:"movie,omitempty"`
	Confidence float64         `json:"confidence"`
	Method     Method          `json:"method"`
}

// Matched reports whether the entry resolved to a library movie.
func (r Result) Matched() bool { return r.Movie != nil }

// Matcher classifies chart titles against a library snapshot. It is not
// safe for concurrent use; the scheduler owns one per run.
type Matcher struct {
	minConfidence float64

	movies []radarr.Movie
	exact  map[string]int
	index  map[string]int
}

// New creates a Matcher with the given fuzzy acceptance threshold. Values
// outside (0, 1] fall back to the default.
func New(minConfidence float64) *Matcher {
	if minConfidence <= 0 || minConfidence > 1 {
		minConfidence = DefaultMinConfidence
	}
	return &Matcher{minConfidence: minConfidence}
}

// BuildIndex rebuilds the lookup index from a library snapshot. Each movie
// is reachable under its exact lowercased title, normalized title,
// article-stripped title, and base title. When two movies collapse onto
// the same base-title key the non-sequel one wins, so "Scream" resolves to
// the original rather than "Scream VI".
func (m *Matcher) BuildIndex(movies []radarr.Movie) {
	m.movies = movies
	m.exact = make(map[string]int, len(movies))
	m.index = make(map[string]int, len(movies)*3)

	for i, movie := range movies {
		if key := strings.ToLower(strings.TrimSpace(movie.Title)); key != "" {
			if _, ok := m.exact[key]; !ok {
				m.exact[key] = i
			}
		}

		normalized := titles.Normalize(movie.Title)
		m.addKey(normalized, i, false)
		m.addKey(titles.StripArticles(normalized), i, false)

		base := titles.Normalize(titles.BaseTitle(movie.Title))
		m.addKey(base, i, titles.LooksLikeSequel(movie.Title))
	}
}

// addKey stores an index key. A sequel only claims a key no other movie
// holds; a non-sequel displaces a sequel already there.
func (m *Matcher) addKey(key string, i int, isSequel bool) {
	if key == "" {
		return
	}
	existing, ok := m.index[key]
	if !ok {
		m.index[key] = i
		return
	}
	if isSequel {
		return
	}
	if titles.LooksLikeSequel(m.movies[existing].Title) {
		m.index[key] = i
	}
}

// MatchAll rebuilds the index once and classifies every chart entry,
// preserving chart rank order. It never fails; an entry with no acceptable
// candidate yields a Result with MethodNone.
func (m *Matcher) MatchAll(chart []boxoffice.Entry, movies []radarr.Movie) []Result {
	m.BuildIndex(movies)
	results := make([]Result, 0, len(chart))
	for _, entry := range chart {
		result := m.classify(entry.Title)
		result.Entry = entry
		results = append(results, result)
	}
	return results
}

// MatchOne classifies a single title against a library snapshot.
func (m *Matcher) MatchOne(title string, movies []radarr.Movie) Result {
	m.BuildIndex(movies)
	return m.classify(title)
}

// classify runs the cascade in order; the first stage that produces a hit
// wins.
func (m *Matcher) classify(title string) Result {
	if movie, ok := m.lookupExact(title); ok {
		return Result{Movie: movie, Confidence: confidenceExact, Method: MethodExact}
	}
	if movie, ok := m.lookupSpecial(title); ok {
		return Result{Movie: movie, Confidence: confidenceSpecial, Method: MethodSpecial}
	}
	if movie, ok := m.lookupNormalized(title); ok {
		return Result{Movie: movie, Confidence: confidenceNormalized, Method: MethodNormalized}
	}
	if movie, score, ok := m.lookupFuzzy(title); ok {
		return Result{Movie: movie, Confidence: score, Method: MethodFuzzy}
	}
	return Result{Method: MethodNone}
}

// lookupExact is case-insensitive full-string equality.
func (m *Matcher) lookupExact(title string) (*radarr.Movie, bool) {
	key := strings.ToLower(strings.TrimSpace(title))
	if key == "" {
		return nil, false
	}
	i, ok := m.exact[key]
	if !ok {
		return nil, false
	}
	return &m.movies[i], true
}

// lookupSpecial handles known troublesome title shapes: punctuation-joined
// subtitles, embedded release years, and Roman numeral sequels.
func (m *Matcher) lookupSpecial(title string) (*radarr.Movie, bool) {
	// Colon and dash removal. "Mission: Impossible" and "Mission Impossible"
	// normalize identically, so retry the normalized lookup on the joined
	// form. Only titles that actually carry the punctuation take this path.
	if strings.ContainsAny(title, ":-") {
		joined := strings.NewReplacer(":", " ", "-", " ").Replace(title)
		if movie, ok := m.lookup(titles.Normalize(joined)); ok {
			return movie, true
		}
	}

	// A year in parentheses identifies a specific release. Strip it, then
	// require the year to line up and the remaining title to be close.
	if year := titles.ExtractYear(title); year > 0 {
		stripped := titles.Normalize(titles.BaseTitle(title))
		for i := range m.movies {
			if m.movies[i].Year != year {
				continue
			}
			if similarity(stripped, titles.Normalize(m.movies[i].Title)) > 0.8 {
				return &m.movies[i], true
			}
		}
	}

	// Roman numeral and digit substitution. Prefer a candidate whose
	// normalized title equals the substituted form exactly; a bare index hit
	// is too loose here because single letters double as numerals.
	normalized := titles.Normalize(title)
	for _, variant := range []string{titles.RomanToDigits(normalized), titles.DigitsToRoman(normalized)} {
		if variant == normalized {
			continue
		}
		if movie, ok := m.lookup(variant); ok {
			if titles.Normalize(movie.Title) == variant {
				return movie, true
			}
		}
	}
	return nil, false
}

// lookupNormalized tries every canonical reduction of the title against
// the index.
func (m *Matcher) lookupNormalized(title string) (*radarr.Movie, bool) {
	normalized := titles.Normalize(title)
	candidates := []string{
		normalized,
		titles.StripArticles(normalized),
		titles.Normalize(titles.BaseTitle(title)),
		titles.WordsToDigits(normalized),
		titles.DigitsToWords(normalized),
	}
	for _, key := range candidates {
		if movie, ok := m.lookup(key); ok {
			return movie, true
		}
	}
	return nil, false
}

// lookupFuzzy scores every library movie by edit-distance similarity and
// keeps the best, accepted only above the configured threshold. A year
// parsed from the chart title that agrees with the movie's year earns a
// small bonus.
func (m *Matcher) lookupFuzzy(title string) (*radarr.Movie, float64, bool) {
	rawTitle := strings.ToLower(strings.TrimSpace(title))
	normalized := titles.Normalize(title)
	base := titles.Normalize(titles.BaseTitle(title))
	chartYear := titles.ExtractYear(title)

	best := -1
	bestScore := 0.0
	for i := range m.movies {
		movie := &m.movies[i]
		score := similarity(rawTitle, strings.ToLower(strings.TrimSpace(movie.Title)))
		if s := similarity(normalized, titles.Normalize(movie.Title)); s > score {
			score = s
		}
		if s := similarity(base, titles.Normalize(titles.BaseTitle(movie.Title))); s > score {
			score = s
		}
		if chartYear > 0 && movie.Year == chartYear {
			score += 0.1
			if score > 1.0 {
				score = 1.0
			}
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 || bestScore < m.minConfidence {
		return nil, 0, false
	}
	return &m.movies[best], bestScore, true
}

func (m *Matcher) lookup(key string) (*radarr.Movie, bool) {
	if key == "" {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return &m.movies[i], true
}
