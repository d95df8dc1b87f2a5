// Package models provides data model definitions for Scholaris Core.
package models

import "time"

// ActionStatus represents the lifecycle state of a pending action.
type ActionStatus string

const (
	ActionStatusPending   ActionStatus = "pending"
	ActionStatusSyncing   ActionStatus = "syncing"
	ActionStatusCompleted ActionStatus = "completed"
	ActionStatusFailed    ActionStatus = "failed"
)

// PendingAction represents a queued mutation awaiting replay against the
// remote API. Actions are never deleted; completed and terminally failed
// rows remain as an audit trail.
type PendingAction struct {
	ID            UUID         `db:"id" json:"id"`
	Endpoint      string       `db:"endpoint" json:"endpoint"`
	Method        string       `db:"method" json:"method"`
	Payload       []byte       `db:"payload" json:"payload,omitempty"`
	Status        ActionStatus `db:"status" json:"status"`
	RetryCount    int          `db:"retry_count" json:"retry_count"`
	LastError     string       `db:"last_error" json:"last_error,omitempty"`
	CreatedAt     int64        `db:"created_at" json:"created_at"`
	UpdatedAt     int64        `db:"updated_at" json:"updated_at"`
	LastAttemptAt int64        `db:"last_attempt_at" json:"last_attempt_at"`
}

// TableName returns the table name for PendingAction.
func (PendingAction) TableName() string {
	return "pending_actions"
}

// CreatedTime returns the CreatedAt as time.Time.
func (a *PendingAction) CreatedTime() time.Time {
	return time.Unix(a.CreatedAt, 0)
}

// LastAttemptTime returns the LastAttemptAt as time.Time.
// The zero time means the action has never been attempted.
func (a *PendingAction) LastAttemptTime() time.Time {
	if a.LastAttemptAt == 0 {
		return time.Time{}
	}
	return time.Unix(a.LastAttemptAt, 0)
}

// Terminal reports whether the action has reached a final state that the
// drain loop must never pick up again.
func (a *PendingAction) Terminal(maxRetries int) bool {
	if a.Status == ActionStatusCompleted {
		return true
	}
	return a.Status == ActionStatusFailed && a.RetryCount >= maxRetries
}
