package testsupport

import (
	"context"
	"sync"

	"boxarr/internal/boxoffice"
	"boxarr/internal/radarr"
)

// Feed is an in-memory chart feed. The zero value serves an empty chart for
// a fixed current week.
type Feed struct {
	mu      sync.Mutex
	Entries []boxoffice.Entry
	Err     error
	Year    int
	Week    int

	fetches int
}

var _ boxoffice.Feed = (*Feed)(nil)

func (f *Feed) FetchWeek(_ context.Context, year, week int) ([]boxoffice.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.Err != nil {
		return nil, &boxoffice.FeedError{Year: year, Week: week, Err: f.Err}
	}
	return append([]boxoffice.Entry(nil), f.Entries...), nil
}

func (f *Feed) CurrentWeek() (int, int) { return f.Year, f.Week }

// Fetches reports how many times FetchWeek was called.
func (f *Feed) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// Library is an in-memory Radarr double. Added movies become part of the
// snapshot returned by subsequent ListMovies calls.
type Library struct {
	mu         sync.Mutex
	Movies     []radarr.Movie
	Candidates map[string][]radarr.Candidate
	Profiles   []radarr.QualityProfile
	Folders    []radarr.RootFolder

	ListErr   error
	SearchErr error
	AddErr    error

	addedReqs []radarr.AddRequest
	nextID    int64
}

var _ radarr.Service = (*Library)(nil)

func (l *Library) ListMovies(context.Context) ([]radarr.Movie, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ListErr != nil {
		return nil, l.ListErr
	}
	return append([]radarr.Movie(nil), l.Movies...), nil
}

func (l *Library) SearchByTitle(_ context.Context, title string) ([]radarr.Candidate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.SearchErr != nil {
		return nil, l.SearchErr
	}
	return l.Candidates[title], nil
}

func (l *Library) AddMovie(_ context.Context, req radarr.AddRequest) (*radarr.Movie, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.AddErr != nil {
		return nil, l.AddErr
	}
	l.addedReqs = append(l.addedReqs, req)
	l.nextID++
	movie := radarr.Movie{
		ID:     l.nextID + 1000,
		Title:  req.Candidate.Title,
		Year:   req.Candidate.Year,
		TMDBID: req.Candidate.TMDBID,
		Status: "inCinemas",
		Genres: req.Candidate.Genres,
	}
	l.Movies = append(l.Movies, movie)
	return &movie, nil
}

func (l *Library) UpdateMovie(_ context.Context, movie radarr.Movie) (*radarr.Movie, error) {
	return &movie, nil
}

func (l *Library) QualityProfiles(context.Context) ([]radarr.QualityProfile, error) {
	return l.Profiles, nil
}

func (l *Library) RootFolders(context.Context) ([]radarr.RootFolder, error) {
	return l.Folders, nil
}

func (l *Library) Ping(context.Context) error { return nil }

// Added returns the add requests recorded so far.
func (l *Library) Added() []radarr.AddRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]radarr.AddRequest(nil), l.addedReqs...)
}
