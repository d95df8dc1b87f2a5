package sync

import (
	"testing"

	"github.com/scholaris-app/scholaris/core/internal/db"
)

func setupTracker(t *testing.T) *MetadataTracker {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.EnsureSchema(database.DB); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}
	return NewMetadataTracker(db.NewRepository(database.DB))
}

func TestMetadataTracker_VersionMonotonic(t *testing.T) {
	tracker := setupTracker(t)

	meta, err := tracker.Get("students")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if meta != nil {
		t.Fatalf("expected nil before first sync, got %+v", meta)
	}

	for want := int64(1); want <= 3; want++ {
		if err := tracker.Touch("students"); err != nil {
			t.Fatalf("touch failed: %v", err)
		}
		meta, err = tracker.Get("students")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if meta.Version != want {
			t.Errorf("expected version %d, got %d", want, meta.Version)
		}
	}
}

func TestMetadataTracker_ListCoversTouchedEntities(t *testing.T) {
	tracker := setupTracker(t)

	for _, entity := range []string{"students", "grades"} {
		if err := tracker.Touch(entity); err != nil {
			t.Fatalf("touch %s failed: %v", entity, err)
		}
	}

	rows, err := tracker.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.LastSyncedAt == 0 {
			t.Errorf("expected %s to carry a sync timestamp", row.EntityType)
		}
	}
}
