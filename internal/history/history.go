// Package history persists reported postings and run records in a local
// sqlite database so repeated runs do not report the same job twice.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"jobfinder/internal/job"
)

// Store wraps the sqlite handle. Open it once per process and Close when done.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates the
// schema. sqlite wants a single writer, so the pool is capped at one
// connection.
func Open(path string) (*Store, error) {
	// modernc sqlite DSN: file:jobs.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history db %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging history db %q: %w", path, err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating history db %q: %w", path, err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&version); err != nil {
		return err
	}
	if version >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS postings (
  key TEXT PRIMARY KEY,
  company TEXT NOT NULL,
  title TEXT NOT NULL,
  url TEXT NOT NULL DEFAULT '',
  score REAL NOT NULL DEFAULT 0,
  first_seen TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  started_at TEXT NOT NULL,
  total INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0,
  qualified INTEGER NOT NULL DEFAULT 0,
  reported INTEGER NOT NULL DEFAULT 0,
  email_sent INTEGER NOT NULL DEFAULT 0,
  errors INTEGER NOT NULL DEFAULT 0,
  duration_ms INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_postings_first_seen
ON postings(first_seen);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

// Seen reports whether a posting with the same company|title key was
// recorded by an earlier run.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM postings WHERE key = ? LIMIT 1;`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying history: %w", err)
	}
	return true, nil
}

// Record stores a reported posting. Returns true when the posting was new;
// reinserting a known key is a no-op.
func (s *Store) Record(ctx context.Context, p *job.Posting, score float64) (bool, error) {
	_, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO postings (key, company, title, url, score, first_seen)
VALUES (?, ?, ?, ?, ?, ?);`,
		p.Key(), p.Company, p.Title, p.URL, score, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("recording posting: %w", err)
	}

	// INSERT OR IGNORE does not report rows affected reliably; changes()
	// does.
	var changes int
	if err := s.db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return true, nil
	}
	return changes > 0, nil
}

// RunRecord is one pipeline execution as stored in the runs table.
type RunRecord struct {
	StartedAt time.Time
	Total     int
	Skipped   int
	Qualified int
	Reported  int
	EmailSent bool
	Errors    int
	Duration  time.Duration
}

// RecordRun appends a run record.
func (s *Store) RecordRun(ctx context.Context, r RunRecord) error {
	emailSent := 0
	if r.EmailSent {
		emailSent = 1
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (started_at, total, skipped, qualified, reported, email_sent, errors, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		r.StartedAt.UTC().Format(time.RFC3339), r.Total, r.Skipped, r.Qualified,
		r.Reported, emailSent, r.Errors, r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Runs returns the most recent run records, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT started_at, total, skipped, qualified, reported, email_sent, errors, duration_ms
FROM runs
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			r         RunRecord
			startedAt string
			emailSent int
			durMillis int64
		)
		if err := rows.Scan(&startedAt, &r.Total, &r.Skipped, &r.Qualified,
			&r.Reported, &emailSent, &r.Errors, &durMillis); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		r.EmailSent = emailSent == 1
		r.Duration = time.Duration(durMillis) * time.Millisecond
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
