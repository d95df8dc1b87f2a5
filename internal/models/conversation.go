// Package models provides data model definitions for Scholaris Core.
package models

// Conversation mirrors the remote messaging thread entity.
type Conversation struct {
	ID            string `json:"id"`
	SchoolID      string `json:"school_id"`
	Subject       string `json:"subject"`
	LastMessage   string `json:"last_message,omitempty"`
	LastMessageAt int64  `json:"last_message_at"`
	UnreadCount   int    `json:"unread_count"`
	LastSyncedAt  int64  `json:"last_synced_at"`
}

// Key returns the stable cache identifier for the conversation.
func (c Conversation) Key() string {
	return c.ID
}
