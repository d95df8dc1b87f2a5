// Package db provides the generic cached-entity store.
package db

import (
	"database/sql"
	"fmt"
	"sync"
)

// CacheRecord is one row of a cached entity collection: the remote
// record's JSON payload keyed by (collection, school, id), plus the time
// of the most recent confirmed read of that identifier.
type CacheRecord struct {
	ID           string
	Payload      []byte
	LastSyncedAt int64
}

// CacheStore persists cached entity collections. All mutations are routed
// through a single writer mutex and applied inside one transaction per
// batch, so concurrent readers never observe a half-written merge.
type CacheStore struct {
	db *sql.DB

	// Serialize write batches; readers go straight to the database and
	// rely on SQLite WAL snapshot isolation.
	writeMu sync.Mutex
}

// NewCacheStore creates a CacheStore over an open database.
func NewCacheStore(db *sql.DB) *CacheStore {
	return &CacheStore{db: db}
}

// UpsertBatch merges a pulled slice of records into a collection for one
// tenant. Existing rows are overwritten wholesale (last-write-wins by
// refetch); rows absent from the batch are left untouched, never deleted.
// The whole batch commits atomically.
func (s *CacheStore) UpsertBatch(collection, schoolID string, records []CacheRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin upsert batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
	INSERT INTO cache_records (collection, school_id, id, payload, last_synced_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(collection, school_id, id) DO UPDATE SET
		payload = excluded.payload,
		last_synced_at = excluded.last_synced_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(collection, schoolID, rec.ID, rec.Payload, rec.LastSyncedAt); err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a single cached record.
func (s *CacheStore) Get(collection, schoolID, id string) (*CacheRecord, error) {
	var rec CacheRecord
	err := s.db.QueryRow(`
	SELECT id, payload, last_synced_at FROM cache_records
	WHERE collection = ? AND school_id = ? AND id = ?
	`, collection, schoolID, id).Scan(&rec.ID, &rec.Payload, &rec.LastSyncedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the cached records of one collection scoped to a tenant,
// most recently synced first. A limit of 0 returns everything.
func (s *CacheStore) List(collection, schoolID string, limit int) ([]CacheRecord, error) {
	query := `
	SELECT id, payload, last_synced_at FROM cache_records
	WHERE collection = ? AND school_id = ?
	ORDER BY last_synced_at DESC, id ASC
	`
	args := []interface{}{collection, schoolID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []CacheRecord
	for rows.Next() {
		var rec CacheRecord
		if err := rows.Scan(&rec.ID, &rec.Payload, &rec.LastSyncedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of cached records in a collection for a tenant.
func (s *CacheStore) Count(collection, schoolID string) (int, error) {
	var n int
	err := s.db.QueryRow(`
	SELECT COUNT(*) FROM cache_records WHERE collection = ? AND school_id = ?
	`, collection, schoolID).Scan(&n)
	return n, err
}
