package sync

import (
	"time"

	"github.com/scholaris-app/scholaris/core/internal/db"
	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
	"github.com/scholaris-app/scholaris/core/internal/models"
)

// MetadataTracker maintains the per-entity sync bookkeeping: the last
// successful sync timestamp and a monotonically increasing version that
// bumps by exactly one on each successful pull merge.
type MetadataTracker struct {
	repo *db.Repository
}

// NewMetadataTracker creates a tracker backed by the given repository.
func NewMetadataTracker(repo *db.Repository) *MetadataTracker {
	return &MetadataTracker{repo: repo}
}

// Get returns the metadata row for an entity type, or nil when the
// entity has never synced.
func (t *MetadataTracker) Get(entityType string) (*models.SyncMetadata, error) {
	meta, err := t.repo.GetSyncMetadata(entityType)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to read sync metadata", err)
	}
	return meta, nil
}

// Touch records a successful sync for the entity: last_synced_at moves
// to now and the version increments. The first touch creates the row
// with version 1.
func (t *MetadataTracker) Touch(entityType string) error {
	if err := t.repo.TouchSyncMetadata(entityType, time.Now()); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update sync metadata", err)
	}
	return nil
}

// List returns metadata for every entity that has synced at least once.
func (t *MetadataTracker) List() ([]*models.SyncMetadata, error) {
	rows, err := t.repo.ListSyncMetadata()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list sync metadata", err)
	}
	return rows, nil
}
