package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/artificial-intelligence-first/docstage/internal/stager"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-backed run history store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		destination TEXT NOT NULL,
		source TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		rewrites INTEGER NOT NULL,
		fingerprint TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_run_id ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_destination ON pages(destination);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun persists a run report and its per-page results atomically.
func (s *SQLiteStore) RecordRun(ctx context.Context, report *stager.Report) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("report with a run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	errText := ""
	if report.Err != nil {
		errText = report.Err.Error()
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (run_id, started_at, duration_ms, pages, outcome, error) VALUES (?, ?, ?, ?, ?, ?)",
		report.RunID, report.StartedAt.Unix(), report.Duration.Milliseconds(),
		len(report.Pages), string(report.Outcome), errText,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	for _, p := range report.Pages {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO pages (run_id, destination, source, bytes, rewrites, fingerprint) VALUES (?, ?, ?, ?, ?, ?)",
			report.RunID, p.Destination, p.Source, p.Bytes, p.Rewrites, p.Fingerprint,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert page %s: %w", p.Destination, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// GetRecent retrieves the most recent runs, newest first.
func (s *SQLiteStore) GetRecent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultRunLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, started_at, duration_ms, pages, outcome, error FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return runs, nil
}

// GetRun retrieves one run and its pages by run ID.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, []Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT run_id, started_at, duration_ms, pages, outcome, error FROM runs WHERE run_id = ?",
		runID,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoRuns, runID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT destination, source, bytes, rewrites, fingerprint FROM pages WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.Destination, &p.Source, &p.Bytes, &p.Rewrites, &p.Fingerprint); err != nil {
			return nil, nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate pages: %w", err)
	}

	return run, pages, nil
}

// LatestFingerprints returns destination fingerprints of the latest
// successful run.
func (s *SQLiteStore) LatestFingerprints(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.destination, p.fingerprint FROM pages p
		JOIN runs r ON r.run_id = p.run_id
		WHERE r.id = (SELECT MAX(id) FROM runs WHERE outcome = 'success')`,
	)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	fingerprints := make(map[string]string)
	for rows.Next() {
		var destination, fingerprint string
		if err := rows.Scan(&destination, &fingerprint); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		fingerprints[destination] = fingerprint
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}
	return fingerprints, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var startedUnix, durationMS int64
	if err := row.Scan(&r.RunID, &startedUnix, &durationMS, &r.Pages, &r.Outcome, &r.Error); err != nil {
		return nil, err
	}
	r.StartedAt = time.Unix(startedUnix, 0)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return &r, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
