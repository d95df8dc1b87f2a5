// Package models provides data model definitions for Scholaris Core.
package models

// Notification mirrors the remote notification entity.
type Notification struct {
	ID           string `json:"id"`
	SchoolID     string `json:"school_id"`
	Title        string `json:"title"`
	Body         string `json:"body,omitempty"`
	Category     string `json:"category,omitempty"` // announcement, grade, attendance, message
	IsRead       bool   `json:"is_read"`
	CreatedAt    int64  `json:"created_at"`
	LastSyncedAt int64  `json:"last_synced_at"`
}

// Key returns the stable cache identifier for the notification.
func (n Notification) Key() string {
	return n.ID
}
