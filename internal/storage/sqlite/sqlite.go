// Package sqlite implements the Storage interface backed by SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage implements storage.Storage using a local SQLite database
type SQLiteStorage struct {
	db *sql.DB
}

// New creates a new SQLite storage backend at the given path, creating
// the parent directory and schema as needed.
func New(path string) (*SQLiteStorage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// WAL mode for better concurrency between the engine loop and CLI reads
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the underlying database
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS seasons (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	starts_at  TIMESTAMP NOT NULL,
	ends_at    TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS chapters (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	season_id  TEXT REFERENCES seasons(id),
	deadline   TIMESTAMP,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS quests (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'active',
	chapter_id   TEXT REFERENCES chapters(id),
	progress     REAL NOT NULL DEFAULT 0,
	deadline     TIMESTAMP,
	created_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	type           TEXT NOT NULL DEFAULT 'maintenance',
	status         TEXT NOT NULL DEFAULT 'open',
	quest_id       TEXT REFERENCES quests(id),
	scheduled_for  TIMESTAMP,
	deadline       TIMESTAMP,
	postpone_count INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL,
	completed_at   TIMESTAMP,
	archived_at    TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_scheduled ON tasks(scheduled_for);

CREATE TABLE IF NOT EXISTS reflections (
	id           TEXT PRIMARY KEY,
	energy_state TEXT NOT NULL,
	note         TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS productivity_events (
	id        TEXT PRIMARY KEY,
	type      TEXT NOT NULL,
	timestamp TIMESTAMP NOT NULL,
	task_id   TEXT NOT NULL DEFAULT '',
	quest_id  TEXT NOT NULL DEFAULT '',
	note      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_events_type_time ON productivity_events(type, timestamp);

CREATE TABLE IF NOT EXISTS triggers (
	id               TEXT PRIMARY KEY,
	type             TEXT NOT NULL,
	enabled          INTEGER NOT NULL DEFAULT 1,
	metric           TEXT NOT NULL,
	operator         TEXT NOT NULL DEFAULT '',
	threshold        REAL NOT NULL DEFAULT 0,
	custom_type      TEXT NOT NULL DEFAULT '',
	window_start     TEXT NOT NULL DEFAULT '',
	window_end       TEXT NOT NULL DEFAULT '',
	cooldown_minutes INTEGER NOT NULL DEFAULT 0,
	last_triggered   TIMESTAMP,
	response_level   TEXT NOT NULL DEFAULT 'popup'
);
`
