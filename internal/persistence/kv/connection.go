// Package kv implements the SQLite-backed key/value snapshot adapter
// (component C8, SPEC_FULL §6.3): two tables, a transactional
// delete-then-insert save, and a load that regenerates the calendar from
// metadata rather than storing it.
package kv

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ConnectionConfig controls how the underlying *sql.DB is opened and
// pooled.
type ConnectionConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
}

// DefaultConnectionConfig returns sane defaults for a single-writer
// scheduling CLI/daemon: small pool, a busy timeout so concurrent readers
// don't trip SQLITE_BUSY immediately.
func DefaultConnectionConfig(path string) ConnectionConfig {
	return ConnectionConfig{
		Path:            path,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		BusyTimeout:     5 * time.Second,
	}
}

// Store wraps a *sql.DB holding the schedule_metadata and tasks tables.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS schedule_metadata (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	metadata_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY,
	task_json TEXT NOT NULL
);
`

// Open connects to the SQLite file at cfg.Path, applies the pool
// settings, and ensures the schema exists.
func Open(cfg ConnectionConfig) (*Store, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=%d", cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("kv: failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("kv: failed to ping sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("kv: failed to apply schema: %w", err)
	}
	return &Store{db: db, path: cfg.Path}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
