// Package store keeps a sqlite log of fetch runs for analytics. Fetched
// text is never persisted, only per-run counters.
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

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Run is one recorded dispatch: what was requested and how it went.
type Run struct {
	ID         int64
	Platform   string
	SourceType string
	SourceVal  string
	Sort       string
	Words      int
	Duration   time.Duration
	Status     string // "ok" or "error"
	Error      string
	StartedAt  time.Time
}

// RunInput is the insert form of Run.
type RunInput struct {
	Platform   string
	SourceType string
	SourceVal  string
	Sort       string
	Words      int
	Duration   time.Duration
	Status     string
	Error      string
	StartedAt  time.Time
}

// PlatformStats aggregates runs per platform over a window.
type PlatformStats struct {
	Platform  string
	Runs      int
	Failed    int
	Words     int
	AvgMillis float64
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

func (s *Store) InsertRun(ctx context.Context, in RunInput) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(in.Platform) == "" {
		return 0, errors.New("platform is required")
	}
	if strings.TrimSpace(in.SourceType) == "" {
		return 0, errors.New("source type is required")
	}
	if in.StartedAt.IsZero() {
		return 0, errors.New("started_at is required")
	}
	switch in.Status {
	case "ok", "error":
	default:
		return 0, fmt.Errorf("status must be ok or error, got %q", in.Status)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			platform, source_type, source_value, sort, words, duration_ms, status, error, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		in.Platform,
		in.SourceType,
		in.SourceVal,
		in.Sort,
		in.Words,
		in.Duration.Milliseconds(),
		in.Status,
		in.Error,
		formatTime(in.StartedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert run id: %w", err)
	}
	return id, nil
}

// GetPlatformStats aggregates runs started at or after since, per platform.
func (s *Store) GetPlatformStats(ctx context.Context, since time.Time) ([]PlatformStats, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT platform,
			COUNT(*),
			SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END),
			SUM(words),
			AVG(duration_ms)
		FROM runs
		WHERE started_at >= ?
		GROUP BY platform
		ORDER BY platform
	`, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("get platform stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []PlatformStats
	for rows.Next() {
		var ps PlatformStats
		if err := rows.Scan(&ps.Platform, &ps.Runs, &ps.Failed, &ps.Words, &ps.AvgMillis); err != nil {
			return nil, fmt.Errorf("scan platform stats: %w", err)
		}
		stats = append(stats, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate platform stats: %w", err)
	}

	return stats, nil
}

// GetRecentRuns returns the most recent runs, newest first.
func (s *Store) GetRecentRuns(ctx context.Context, limit int) ([]Run, error) {
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
		SELECT id, platform, source_type, source_value, sort, words, duration_ms, status, error, started_at
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			durationMS int64
			startedAt  string
		)
		if err := rows.Scan(&r.ID, &r.Platform, &r.SourceType, &r.SourceVal, &r.Sort,
			&r.Words, &durationMS, &r.Status, &r.Error, &startedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.StartedAt, err = parseTime(startedAt)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
