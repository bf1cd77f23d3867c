package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations applies the schema. Locks are deliberately absent:
// they are volatile, short-lived and self-healing via TTL, so they
// live in memory only.
func (db *DB) RunMigrations() error {
	migration := `
-- Stock take sessions
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    branch_id TEXT NOT NULL,
    created_by TEXT NOT NULL,
    is_multi_user INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK(status IN ('draft', 'active', 'paused', 'completed', 'cancelled')),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    started_at TIMESTAMP,
    completed_at TIMESTAMP,
    cancelled_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_branch_sessions ON sessions(branch_id);
CREATE INDEX IF NOT EXISTS idx_session_status ON sessions(status);

-- Counters permitted to count in a session (empty set = unrestricted)
CREATE TABLE IF NOT EXISTS session_counters (
    session_id TEXT NOT NULL,
    counter_id TEXT NOT NULL,
    PRIMARY KEY (session_id, counter_id),
    FOREIGN KEY (session_id) REFERENCES sessions(id)
);

-- Shelf to counter assignment map
CREATE TABLE IF NOT EXISTS shelf_assignments (
    session_id TEXT NOT NULL,
    shelf TEXT NOT NULL,
    counter_id TEXT NOT NULL,
    PRIMARY KEY (session_id, shelf),
    FOREIGN KEY (session_id) REFERENCES sessions(id)
);

-- Items in scope for a session; baseline_qty is frozen at creation
CREATE TABLE IF NOT EXISTS session_items (
    session_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    shelf TEXT NOT NULL DEFAULT '',
    baseline_qty REAL NOT NULL,
    PRIMARY KEY (session_id, item_id),
    FOREIGN KEY (session_id) REFERENCES sessions(id)
);

-- Append-only count ledger
CREATE TABLE IF NOT EXISTS count_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    counter_id TEXT NOT NULL,
    counted_qty REAL NOT NULL,
    variance REAL NOT NULL,
    counted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (session_id, item_id) REFERENCES session_items(session_id, item_id)
);
CREATE INDEX IF NOT EXISTS idx_session_entries ON count_entries(session_id);
CREATE INDEX IF NOT EXISTS idx_item_entries ON count_entries(session_id, item_id);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    branch_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP,
    description TEXT
);
CREATE INDEX IF NOT EXISTS idx_branch_keys ON api_keys(branch_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
