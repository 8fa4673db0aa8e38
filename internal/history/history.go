// Package history persists one immutable JSON record per reconciliation
// run. Records live under history/ in the data directory, one timestamped
// file per run plus a per-week latest pointer. Writes go to a temp file
// first and are published by rename so readers never observe partial
// records.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"boxarr/internal/boxoffice"
	"boxarr/internal/logging"
	"boxarr/internal/radarr"
)

// ErrNotFound indicates no record exists for the requested week.
var ErrNotFound = errors.New("history: record not found")

// MatchedItem records one chart entry that resolved to a library movie.
type MatchedItem struct {
	Rank       int                  `json:"rank"`
	Title      string               `json:"title"`
	MovieTitle string               `json:"movieTitle"`
	Year       int                  `json:"year,omitempty"`
	Confidence float64              `json:"confidence"`
	Method     string               `json:"method"`
	Status     radarr.DisplayStatus `json:"status"`
}

// UnmatchedItem records one chart entry with no library counterpart.
type UnmatchedItem struct {
	Rank   int    `json:"rank"`
	Title  string `json:"title"`
	Reason string `json:"reason,omitempty"`
}

// Skip records why an eligible candidate was not added.
type Skip struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// RunRecord is the durable outcome of one reconciliation run.
type RunRecord struct {
	RunID           string                       `json:"runId"`
	Timestamp       time.Time                    `json:"timestamp"`
	Year            int                          `json:"year"`
	Week            int                          `json:"week"`
	Status          string                       `json:"status"`
	TotalCount      int                          `json:"totalCount"`
	MatchedCount    int                          `json:"matchedCount"`
	UnmatchedCount  int                          `json:"unmatchedCount"`
	StatusBreakdown map[radarr.DisplayStatus]int `json:"statusBreakdown,omitempty"`
	MatchedItems    []MatchedItem                `json:"matchedItems,omitempty"`
	UnmatchedItems  []UnmatchedItem              `json:"unmatchedItems,omitempty"`
	AddedTitles     []string                     `json:"addedTitles,omitempty"`
	Skips           []Skip                       `json:"skips,omitempty"`
}

// WeekLabel returns the record's canonical week label, e.g. "2026W30".
func (r RunRecord) WeekLabel() string {
	return boxoffice.FormatWeek(r.Year, r.Week)
}

// Store reads and writes run records under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the history directory if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("history directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	return &Store{dir: dir, logger: logging.NewComponentLogger(logger, "history")}, nil
}

// Dir returns the directory records are stored in.
func (s *Store) Dir() string { return s.dir }

// Write persists a record as the timestamped file for its run and updates
// the per-week latest pointer. It returns the timestamped file path.
func (s *Store) Write(record RunRecord) (string, error) {
	if record.Year == 0 || record.Week == 0 {
		return "", errors.New("record year and week required")
	}
	stamp := record.Timestamp
	if stamp.IsZero() {
		stamp = time.Now()
		record.Timestamp = stamp
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode run record: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", record.WeekLabel(), stamp.Format("20060102_150405"))
	path := filepath.Join(s.dir, name)
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("write run record: %w", err)
	}

	latest := filepath.Join(s.dir, record.WeekLabel()+"_latest.json")
	if err := writeAtomic(latest, data); err != nil {
		return "", fmt.Errorf("write latest pointer: %w", err)
	}
	return path, nil
}

// Latest reads the most recent record for a week.
func (s *Store) Latest(year, week int) (*RunRecord, error) {
	path := filepath.Join(s.dir, boxoffice.FormatWeek(year, week)+"_latest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w (%s)", ErrNotFound, boxoffice.FormatWeek(year, week))
		}
		return nil, fmt.Errorf("read latest record: %w", err)
	}
	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode latest record: %w", err)
	}
	return &record, nil
}

// HasLatest reports whether a latest pointer exists for a week.
func (s *Store) HasLatest(year, week int) bool {
	path := filepath.Join(s.dir, boxoffice.FormatWeek(year, week)+"_latest.json")
	_, err := os.Stat(path)
	return err == nil
}

// Recent returns up to limit run records, newest first, latest pointers
// excluded.
func (s *Store) Recent(limit int) ([]RunRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read history directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, "_latest.json") {
			continue
		}
		names = append(names, name)
	}
	// Timestamped names sort chronologically within a week; the embedded
	// timestamp dominates across weeks once records are decoded, so sort
	// after reading.
	var records []RunRecord
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var record RunRecord
		if err := json.Unmarshal(data, &record); err != nil {
			s.logger.Warn("skipping unreadable run record", logging.String("file", name), logging.Error(err))
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Prune removes records older than retentionDays, keeping every latest
// pointer.
func (s *Store) Prune(retentionDays int) {
	logging.CleanupOldLogs(s.logger, retentionDays, logging.RetentionTarget{
		Dir:     s.dir,
		Pattern: "*.json",
		Exclude: []string{"*_latest.json"},
	})
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
