// Package journal keeps a queryable ledger of reconciliation runs in
// SQLite. The history package owns the full per-run JSON records; the
// journal holds the summary rows that back the runs listing and daemon
// status without scanning every history file.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; the database is disposable and can be deleted on mismatch.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// schema version.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

// Run status values.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Trigger values.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Run is one ledger row.
type Run struct {
	ID             int64
	RunID          string
	Year           int
	Week           int
	Trigger        string
	Status         string
	StartedAt      time.Time
	FinishedAt     time.Time
	TotalCount     int
	MatchedCount   int
	UnmatchedCount int
	AddedTitles    []string
	Error          string
}

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database under dataDir.
func Open(dataDir string) (*Store, error) {
	dataDir = strings.TrimSpace(dataDir)
	if dataDir == "" {
		return nil, errors.New("journal data directory required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Begin inserts a running row for a new reconciliation run.
func (s *Store) Begin(ctx context.Context, runID string, year, week int, trigger string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, year, week, triggered_by, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID, year, week, trigger, StatusRunning, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish marks a run complete with its outcome counts.
func (s *Store) Finish(ctx context.Context, runID, status string, total, matched, unmatched int, addedTitles []string, runErr error) error {
	var addedJSON any
	if len(addedTitles) > 0 {
		encoded, err := json.Marshal(addedTitles)
		if err != nil {
			return fmt.Errorf("encode added titles: %w", err)
		}
		addedJSON = string(encoded)
	}
	var errText any
	if runErr != nil {
		errText = runErr.Error()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs
         SET status = ?, finished_at = ?, total_count = ?, matched_count = ?,
             unmatched_count = ?, added_titles_json = ?, error = ?
         WHERE run_id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano),
		total, matched, unmatched, addedJSON, errText, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run id %s", runID)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, year, week, triggered_by, status, started_at, finished_at,
                total_count, matched_count, unmatched_count, added_titles_json, error
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastForWeek returns the most recent run row for a week, or nil.
func (s *Store) LastForWeek(ctx context.Context, year, week int) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, year, week, triggered_by, status, started_at, finished_at,
                total_count, matched_count, unmatched_count, added_titles_json, error
         FROM runs WHERE year = ? AND week = ? ORDER BY started_at DESC LIMIT 1`,
		year, week)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt, addedJSON, errText sql.NullString
	err := row.Scan(
		&run.ID, &run.RunID, &run.Year, &run.Week, &run.Trigger, &run.Status,
		&startedAt, &finishedAt,
		&run.TotalCount, &run.MatchedCount, &run.UnmatchedCount,
		&addedJSON, &errText,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		run.StartedAt = ts
	}
	if finishedAt.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
			run.FinishedAt = ts
		}
	}
	if addedJSON.Valid && addedJSON.String != "" {
		if err := json.Unmarshal([]byte(addedJSON.String), &run.AddedTitles); err != nil {
			return nil, fmt.Errorf("decode added titles: %w", err)
		}
	}
	if errText.Valid {
		run.Error = errText.String
	}
	return &run, nil
}
