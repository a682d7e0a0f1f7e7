// Package history keeps a local journal of scrape runs in SQLite.
//
// The journal is opt-in: it is only opened when a history path is
// configured, and it never feeds back into the scrape itself. Each run
// is recorded with its outcome and counts so selector breakage or a
// shrinking results table can be spotted across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses recorded in the journal.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Store wraps SQLite access to the run journal.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history db: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			url TEXT NOT NULL,
			status TEXT NOT NULL,
			races_scraped INTEGER NOT NULL,
			rows_skipped INTEGER NOT NULL,
			error TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Run represents one recorded scrape run.
type Run struct {
	ID           int64     `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	URL          string    `json:"url"`
	Status       string    `json:"status"`
	RacesScraped int       `json:"races_scraped"`
	RowsSkipped  int       `json:"rows_skipped"`
	Error        *string   `json:"error,omitempty"`
}

// RecordRun inserts a run into the journal and returns it with its ID set.
func (s *Store) RecordRun(ctx context.Context, r *Run) (*Run, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO runs(started_at, finished_at, url, status, races_scraped, rows_skipped, error) VALUES(?,?,?,?,?,?,?)`,
		r.StartedAt.UTC(), r.FinishedAt.UTC(), r.URL, r.Status, r.RacesScraped, r.RowsSkipped, r.Error)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	r.ID = id
	return r, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, started_at, finished_at, url, status, races_scraped, rows_skipped, error FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.URL, &r.Status, &r.RacesScraped, &r.RowsSkipped, &errMsg); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			r.Error = &errMsg.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Health returns an error if the journal database is not reachable.
func (s *Store) Health(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, `SELECT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("history db health: %w", err)
	}
	return nil
}
