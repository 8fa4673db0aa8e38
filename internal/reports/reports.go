// Package reports renders the weekly chart summary consumed by dashboards
// and the CLI. Reports are derived entirely from the latest history record
// for a week, so they can be regenerated at any time.
package reports

import (
	"context"
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
	"boxarr/internal/history"
	"boxarr/internal/logging"
	"boxarr/internal/radarr"
)

// Regenerator rebuilds the report for a week after its underlying data
// changed. The scheduler treats failures as log-and-continue.
type Regenerator interface {
	Regenerate(ctx context.Context, year, week int) error
}

// Row is one chart position in a weekly report.
type Row struct {
	Rank       int                  `json:"rank"`
	Title      string               `json:"title"`
	Matched    bool                 `json:"matched"`
	Status     radarr.DisplayStatus `json:"status,omitempty"`
	Confidence float64              `json:"confidence,omitempty"`
	Added      bool                 `json:"added,omitempty"`
}

// Report is the rendered weekly summary.
type Report struct {
	Week        string    `json:"week"`
	GeneratedAt time.Time `json:"generatedAt"`
	RunID       string    `json:"runId"`
	Rows        []Row     `json:"rows"`
	AddedTitles []string  `json:"addedTitles,omitempty"`
}

// Generator writes weekly reports from history records.
type Generator struct {
	dir     string
	store   *history.Store
	logger  *slog.Logger
	nowFunc func() time.Time
}

var _ Regenerator = (*Generator)(nil)

// NewGenerator creates the reports directory if needed.
func NewGenerator(dir string, store *history.Store, logger *slog.Logger) (*Generator, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("reports directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure reports directory: %w", err)
	}
	return &Generator{
		dir:     dir,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "reports"),
		nowFunc: time.Now,
	}, nil
}

// Dir returns the directory reports are written to.
func (g *Generator) Dir() string { return g.dir }

// Path returns the report file location for a week.
func (g *Generator) Path(year, week int) string {
	return filepath.Join(g.dir, boxoffice.FormatWeek(year, week)+".json")
}

// Exists reports whether a report has been generated for a week.
func (g *Generator) Exists(year, week int) bool {
	_, err := os.Stat(g.Path(year, week))
	return err == nil
}

// Publish writes the weekly report for a just-completed run directly from
// its record, before the record reaches the history store.
func (g *Generator) Publish(ctx context.Context, record history.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.write(buildReport(record, g.nowFunc()))
}

// Regenerate rebuilds the weekly report from the latest history record.
func (g *Generator) Regenerate(ctx context.Context, year, week int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record, err := g.store.Latest(year, week)
	if err != nil {
		return fmt.Errorf("load run record: %w", err)
	}
	return g.write(buildReport(*record, g.nowFunc()))
}

// Load reads a previously generated report.
func (g *Generator) Load(year, week int) (*Report, error) {
	data, err := os.ReadFile(g.Path(year, week))
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

func (g *Generator) write(report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	path := filepath.Join(g.dir, report.Week+".json")
	tmp, err := os.CreateTemp(g.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish report: %w", err)
	}
	g.logger.Info("report written", logging.String("path", path))
	return nil
}

func buildReport(record history.RunRecord, now time.Time) Report {
	added := make(map[string]struct{}, len(record.AddedTitles))
	for _, title := range record.AddedTitles {
		added[title] = struct{}{}
	}

	rows := make([]Row, 0, len(record.MatchedItems)+len(record.UnmatchedItems))
	for _, item := range record.MatchedItems {
		rows = append(rows, Row{
			Rank:       item.Rank,
			Title:      item.Title,
			Matched:    true,
			Status:     item.Status,
			Confidence: item.Confidence,
		})
	}
	for _, item := range record.UnmatchedItems {
		_, wasAdded := added[item.Title]
		rows = append(rows, Row{Rank: item.Rank, Title: item.Title, Added: wasAdded})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })

	return Report{
		Week:        record.WeekLabel(),
		GeneratedAt: now,
		RunID:       record.RunID,
		Rows:        rows,
		AddedTitles: record.AddedTitles,
	}
}
