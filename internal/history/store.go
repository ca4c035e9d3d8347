// Package history records build runs in a local SQLite database so operators
// can inspect recent outcomes without scraping logs. Writes are best-effort
// at build finalization.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one build run.
type Record struct {
	ID        int64
	BuildID   string
	Status    string
	Framework string
	Entries   int
	Duration  time.Duration
	StartedAt time.Time
}

// Store is a SQLite-backed build-history store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens the history database. Use ":memory:" for tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		status TEXT NOT NULL,
		framework TEXT,
		entries INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL,
		started_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one build run.
func (s *Store) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, status, framework, entries, duration_ms, started_at) VALUES (?, ?, ?, ?, ?, ?)",
		r.BuildID, r.Status, r.Framework, r.Entries, r.Duration.Milliseconds(), r.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, status, framework, entries, duration_ms, started_at FROM builds ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Record
	for rows.Next() {
		var r Record
		var durationMS, startedAt int64
		if err := rows.Scan(&r.ID, &r.BuildID, &r.Status, &r.Framework, &r.Entries, &durationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.StartedAt = time.Unix(startedAt, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
