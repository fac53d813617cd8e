// Package store keeps sync-run history in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run kinds, matching the two sync operations.
const (
	KindLogs          = "logs"
	KindConversations = "conversations"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusError   = "error"
)

type Store struct {
	db *sql.DB
}

// Run is one recorded sync invocation.
type Run struct {
	ID         string
	Kind       string
	StartedAt  time.Time
	FinishedAt time.Time
	Records    int
	Files      int
	Status     string
	Error      string
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a new running sync record and returns it.
func (s *Store) BeginRun(ctx context.Context, kind string) (Run, error) {
	if s == nil || s.db == nil {
		return Run{}, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if kind != KindLogs && kind != KindConversations {
		return Run{}, fmt.Errorf("unknown run kind %q", kind)
	}

	run := Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
		Status:    StatusRunning,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, kind, started_at, status)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Kind, formatTime(run.StartedAt), run.Status)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}

	return run, nil
}

// FinishRun closes out a run with its record and file counts. A non-nil
// runErr marks the run as failed and stores the error text.
func (s *Store) FinishRun(ctx context.Context, id string, records, files int, runErr error) error {
	if s == nil || s.db == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("run id is required")
	}

	status := StatusOK
	errText := sql.NullString{}
	if runErr != nil {
		status = StatusError
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sync_runs
		SET finished_at = ?, records = ?, files = ?, status = ?, error = ?
		WHERE id = ?
	`, formatTime(time.Now().UTC()), records, files, status, errText, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: no run with id %s", id)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at, records, files, status, error
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// LastSuccessful returns the start time of the most recent successful run of
// the given kind, and whether one exists.
func (s *Store) LastSuccessful(ctx context.Context, kind string) (time.Time, bool, error) {
	if s == nil || s.db == nil {
		return time.Time{}, false, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT started_at
		FROM sync_runs
		WHERE kind = ? AND status = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, kind, StatusOK)

	var startedAt string
	err := row.Scan(&startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last successful: %w", err)
	}

	t, err := parseTime(startedAt)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
		errText    sql.NullString
	)
	if err := rows.Scan(&run.ID, &run.Kind, &startedAt, &finishedAt, &run.Records, &run.Files, &run.Status, &errText); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return Run{}, err
	}
	if finishedAt.Valid {
		run.FinishedAt, err = parseTime(finishedAt.String)
		if err != nil {
			return Run{}, err
		}
	}
	if errText.Valid {
		run.Error = errText.String
	}

	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
