// Package models provides data model definitions for Scholaris Core.
package models

import "time"

// SyncMetadata tracks per-entity-type sync bookkeeping. One row exists per
// entity type, created lazily on the first successful pull. Version only
// ever increases, so consumers can detect "fresher than last render"
// without diffing cache content.
type SyncMetadata struct {
	EntityType   string `db:"entity_type" json:"entity_type"`
	LastSyncedAt int64  `db:"last_synced_at" json:"last_synced_at"`
	Version      int64  `db:"version" json:"version"`
}

// TableName returns the table name for SyncMetadata.
func (SyncMetadata) TableName() string {
	return "sync_metadata"
}

// LastSyncedTime returns the LastSyncedAt as time.Time.
func (m *SyncMetadata) LastSyncedTime() time.Time {
	return time.Unix(m.LastSyncedAt, 0)
}

// Age returns how long ago this entity type was last synced.
func (m *SyncMetadata) Age(now time.Time) time.Duration {
	return now.Sub(m.LastSyncedTime())
}
