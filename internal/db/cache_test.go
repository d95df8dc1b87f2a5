// Package db provides unit tests for the cached-entity store.
package db

import (
	"testing"
)

// TestUpsertBatch_InsertAndOverwrite verifies the upsert-merge contract:
// overlapping ids are replaced wholesale, untouched ids survive.
func TestUpsertBatch_InsertAndOverwrite(t *testing.T) {
	store := NewCacheStore(setupTestDB(t))

	initial := []CacheRecord{
		{ID: "id1", Payload: []byte(`{"v":1}`), LastSyncedAt: 100},
		{ID: "id2", Payload: []byte(`{"v":1}`), LastSyncedAt: 100},
	}
	if err := store.UpsertBatch("students", "school-1", initial); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	// Second pull only reports id1, at a newer version
	update := []CacheRecord{
		{ID: "id1", Payload: []byte(`{"v":2}`), LastSyncedAt: 200},
	}
	if err := store.UpsertBatch("students", "school-1", update); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	got1, err := store.Get("students", "school-1", "id1")
	if err != nil {
		t.Fatalf("Get id1 failed: %v", err)
	}
	if string(got1.Payload) != `{"v":2}` || got1.LastSyncedAt != 200 {
		t.Errorf("id1 = %+v, want v2 at 200", got1)
	}

	// id2 dropped out of the pull window but must not be deleted
	got2, err := store.Get("students", "school-1", "id2")
	if err != nil {
		t.Fatalf("Get id2 failed: %v", err)
	}
	if string(got2.Payload) != `{"v":1}` || got2.LastSyncedAt != 100 {
		t.Errorf("id2 = %+v, want untouched v1 at 100", got2)
	}
}

// TestUpsertBatch_Empty verifies an empty batch is a no-op.
func TestUpsertBatch_Empty(t *testing.T) {
	store := NewCacheStore(setupTestDB(t))

	if err := store.UpsertBatch("students", "school-1", nil); err != nil {
		t.Fatalf("Empty batch should succeed: %v", err)
	}

	n, err := store.Count("students", "school-1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

// TestList_TenantScoping verifies records never leak across tenants or
// collections.
func TestList_TenantScoping(t *testing.T) {
	store := NewCacheStore(setupTestDB(t))

	recs := []CacheRecord{{ID: "id1", Payload: []byte(`{}`), LastSyncedAt: 1}}
	if err := store.UpsertBatch("students", "school-1", recs); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}
	if err := store.UpsertBatch("students", "school-2", recs); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}
	if err := store.UpsertBatch("grades", "school-1", recs); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	list, err := store.List("students", "school-1", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 record for school-1 students, got %d", len(list))
	}

	list, err = store.List("students", "school-3", 0)
	if err != nil {
		t.Fatalf("List for unknown tenant failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty result for unknown tenant, got %d", len(list))
	}
}

// TestList_OrderAndLimit verifies most-recently-synced-first ordering and
// the fetch limit.
func TestList_OrderAndLimit(t *testing.T) {
	store := NewCacheStore(setupTestDB(t))

	recs := []CacheRecord{
		{ID: "old", Payload: []byte(`{}`), LastSyncedAt: 100},
		{ID: "new", Payload: []byte(`{}`), LastSyncedAt: 300},
		{ID: "mid", Payload: []byte(`{}`), LastSyncedAt: 200},
	}
	if err := store.UpsertBatch("notifications", "school-1", recs); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	list, err := store.List("notifications", "school-1", 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 records with limit, got %d", len(list))
	}
	if list[0].ID != "new" || list[1].ID != "mid" {
		t.Errorf("Order = [%s, %s], want [new, mid]", list[0].ID, list[1].ID)
	}
}
