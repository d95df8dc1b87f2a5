// Package db provides persistence operations for the pending action queue
// and per-entity sync metadata.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/scholaris-app/scholaris/core/internal/models"
	"github.com/scholaris-app/scholaris/core/internal/uuid"
)

// Repository provides row-level operations for pending actions and sync
// metadata. Statements are prepared on first use and cached for reuse.
type Repository struct {
	db *sql.DB

	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// PrepareStmt gets or creates a prepared statement from the cache.
func (r *Repository) PrepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another goroutine already prepared this, close our duplicate
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}
	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// =====================================================
// PendingAction Operations
// =====================================================

const pendingActionColumns = `id, endpoint, method, payload, status, retry_count,
	last_error, created_at, updated_at, last_attempt_at`

// CreatePendingAction persists a new pending action. ID, status, retry
// count and timestamps are assigned here.
func (r *Repository) CreatePendingAction(a *models.PendingAction) error {
	now := time.Now().Unix()
	a.ID = models.UUID(uuid.New())
	a.Status = models.ActionStatusPending
	a.RetryCount = 0
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
	INSERT INTO pending_actions (id, endpoint, method, payload, status, retry_count,
		last_error, created_at, updated_at, last_attempt_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, a.ID, a.Endpoint, a.Method, a.Payload, a.Status,
		a.RetryCount, a.LastError, a.CreatedAt, a.UpdatedAt, a.LastAttemptAt)
	return err
}

// GetPendingAction retrieves a pending action by ID.
func (r *Repository) GetPendingAction(id string) (*models.PendingAction, error) {
	query := `SELECT ` + pendingActionColumns + ` FROM pending_actions WHERE id = ?`

	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	var a models.PendingAction
	err = stmt.QueryRow(id).Scan(&a.ID, &a.Endpoint, &a.Method, &a.Payload,
		&a.Status, &a.RetryCount, &a.LastError, &a.CreatedAt, &a.UpdatedAt,
		&a.LastAttemptAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListEligibleActions returns actions that a drain pass may process:
// status pending, or status failed with retry count below the ceiling.
// Ordered oldest first so FIFO replay preserves causal write order.
func (r *Repository) ListEligibleActions(maxRetries int) ([]*models.PendingAction, error) {
	query := `
	SELECT ` + pendingActionColumns + `
	FROM pending_actions
	WHERE status = ? OR (status = ? AND retry_count < ?)
	ORDER BY created_at ASC, seq ASC
	`
	rows, err := r.db.Query(query, models.ActionStatusPending, models.ActionStatusFailed, maxRetries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*models.PendingAction
	for rows.Next() {
		var a models.PendingAction
		if err := rows.Scan(&a.ID, &a.Endpoint, &a.Method, &a.Payload, &a.Status,
			&a.RetryCount, &a.LastError, &a.CreatedAt, &a.UpdatedAt,
			&a.LastAttemptAt); err != nil {
			return nil, err
		}
		actions = append(actions, &a)
	}
	return actions, rows.Err()
}

// UpdatePendingAction persists status, retry count, error and attempt
// bookkeeping for an existing action.
func (r *Repository) UpdatePendingAction(a *models.PendingAction) error {
	a.UpdatedAt = time.Now().Unix()

	query := `
	UPDATE pending_actions
	SET status = ?, retry_count = ?, last_error = ?, updated_at = ?, last_attempt_at = ?
	WHERE id = ?
	`
	res, err := r.db.Exec(query, a.Status, a.RetryCount, a.LastError,
		a.UpdatedAt, a.LastAttemptAt, a.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountActionsByStatus returns queue statistics grouped by status.
func (r *Repository) CountActionsByStatus() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM pending_actions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{
		"pending":   0,
		"syncing":   0,
		"completed": 0,
		"failed":    0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// =====================================================
// SyncMetadata Operations
// =====================================================

// GetSyncMetadata retrieves metadata for one entity type. Returns
// (nil, nil) when the entity type has never synced.
func (r *Repository) GetSyncMetadata(entityType string) (*models.SyncMetadata, error) {
	query := `SELECT entity_type, last_synced_at, version FROM sync_metadata WHERE entity_type = ?`

	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	var m models.SyncMetadata
	err = stmt.QueryRow(entityType).Scan(&m.EntityType, &m.LastSyncedAt, &m.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// TouchSyncMetadata records a successful pull: the row is created on first
// touch and its version incremented on every touch. Version is therefore
// monotonically non-decreasing for the lifetime of the database.
func (r *Repository) TouchSyncMetadata(entityType string, syncedAt time.Time) error {
	query := `
	INSERT INTO sync_metadata (entity_type, last_synced_at, version)
	VALUES (?, ?, 1)
	ON CONFLICT(entity_type) DO UPDATE SET
		last_synced_at = excluded.last_synced_at,
		version = sync_metadata.version + 1
	`
	_, err := r.db.Exec(query, entityType, syncedAt.Unix())
	return err
}

// ListSyncMetadata returns metadata for all entity types that have synced
// at least once.
func (r *Repository) ListSyncMetadata() ([]*models.SyncMetadata, error) {
	rows, err := r.db.Query(`SELECT entity_type, last_synced_at, version FROM sync_metadata ORDER BY entity_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.SyncMetadata
	for rows.Next() {
		var m models.SyncMetadata
		if err := rows.Scan(&m.EntityType, &m.LastSyncedAt, &m.Version); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
