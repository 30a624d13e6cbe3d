// Package sqlite implements the repository interfaces on an embedded SQLite
// database.
//
// We use modernc.org/sqlite (a pure-Go translation of SQLite) rather than
// the CGo driver, so the binary cross-compiles without a C toolchain. The
// database is a single file; tests use ":memory:".
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces declared in internal/repository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets the reminder sweep read while user requests write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Referential integrity between users and their garden entries.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New().
func (db *DB) Close() error {
	return db.conn.Close()
}

// Timestamps are persisted as Unix nanoseconds. Binding a time.Time
// directly would serialize it with its monotonic clock reading, which a
// value scanned back from the store never carries, so the equality compare
// in AdvanceSchedule could never match a stored row. An INTEGER column
// keeps equality and ordering exact in both directions.
func toUnixNano(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// Ping verifies the database is still reachable. Used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates or updates the schema. Every statement is idempotent, so
// running migrations on an existing database is safe.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL DEFAULT '',
			email           TEXT NOT NULL UNIQUE,
			notifications   INTEGER NOT NULL DEFAULT 1,
			total_plants    INTEGER NOT NULL DEFAULT 0,
			tasks_completed INTEGER NOT NULL DEFAULT 0,
			created_at      INTEGER NOT NULL DEFAULT 0,
			updated_at      INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS gardens (
			id              TEXT PRIMARY KEY,
			owner_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			common_name     TEXT NOT NULL DEFAULT '',
			scientific_name TEXT NOT NULL DEFAULT '',
			confidence      INTEGER NOT NULL DEFAULT 0,
			family          TEXT NOT NULL DEFAULT '',
			care_water      TEXT NOT NULL DEFAULT '',
			care_light      TEXT NOT NULL DEFAULT '',
			care_soil       TEXT NOT NULL DEFAULT '',
			care_temp       TEXT NOT NULL DEFAULT '',
			care_toxic      TEXT NOT NULL DEFAULT '',
			last_watered    INTEGER NOT NULL,
			next_watering   INTEGER NOT NULL,
			added_at        INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_gardens_owner_id ON gardens(owner_id);
		CREATE INDEX IF NOT EXISTS idx_gardens_next_watering ON gardens(next_watering);
	`)
	if err != nil {
		return fmt.Errorf("creating gardens table: %w", err)
	}

	// Recent-activity feed, trimmed on append (see AppendActivity).
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS activities (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			text    TEXT NOT NULL,
			at      INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating activities table: %w", err)
	}

	return nil
}
