// Package boxoffice fetches the weekly box-office chart. The scheduler
// consumes it through the Feed interface and treats any failure as fatal
// to the run, so errors carry the week they were fetched for.
package boxoffice

import (
	"context"
	"fmt"
)

// Entry is one ranked row of the weekly chart. Financial fields are
// optional; a zero value means the source did not report them.
type Entry struct {
	Rank           int    `json:"rank"`
	Title          string `json:"title"`
	WeekendGross   int64  `json:"weekendGross,omitempty"`
	TotalGross     int64  `json:"totalGross,omitempty"`
	WeeksInRelease int    `json:"weeksInRelease,omitempty"`
	TheaterCount   int    `json:"theaterCount,omitempty"`
}

// Feed supplies ranked chart entries for a week.
type Feed interface {
	FetchWeek(ctx context.Context, year, week int) ([]Entry, error)
	CurrentWeek() (year, week int)
}

// FeedError wraps a chart fetch failure with the week it targeted.
type FeedError struct {
	Year int
	Week int
	Err  error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("chart fetch for %s: %v", FormatWeek(e.Year, e.Week), e.Err)
}

func (e *FeedError) Unwrap() error { return e.Err }

// FormatWeek renders a (year, week) pair as its canonical label, e.g.
// "2026W30".
func FormatWeek(year, week int) string {
	return fmt.Sprintf("%dW%02d", year, week)
}
