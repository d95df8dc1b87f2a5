// Package db provides database schema management for the sync core.
package db

import (
	"database/sql"
	"fmt"
)

// schemaStatements is the embedded schema. The client core ships no .sql
// migration directory; tables are created idempotently at startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS pending_actions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		endpoint TEXT NOT NULL CHECK(length(endpoint) > 0),
		method TEXT NOT NULL CHECK(length(method) > 0),
		payload BLOB,
		status TEXT NOT NULL CHECK(status IN ('pending', 'syncing', 'completed', 'failed')),
		retry_count INTEGER NOT NULL DEFAULT 0 CHECK(retry_count >= 0),
		last_error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		last_attempt_at INTEGER NOT NULL DEFAULT 0
	);`,

	`CREATE INDEX IF NOT EXISTS idx_pending_actions_status
		ON pending_actions(status, retry_count);`,

	`CREATE TABLE IF NOT EXISTS sync_metadata (
		entity_type TEXT PRIMARY KEY,
		last_synced_at INTEGER NOT NULL,
		version INTEGER NOT NULL DEFAULT 0 CHECK(version >= 0)
	);`,

	`CREATE TABLE IF NOT EXISTS cache_records (
		collection TEXT NOT NULL,
		school_id TEXT NOT NULL,
		id TEXT NOT NULL,
		payload TEXT NOT NULL,
		last_synced_at INTEGER NOT NULL,
		PRIMARY KEY (collection, school_id, id)
	);`,

	`CREATE INDEX IF NOT EXISTS idx_cache_records_synced
		ON cache_records(collection, school_id, last_synced_at);`,
}

// EnsureSchema creates all tables and indexes if they do not exist.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
