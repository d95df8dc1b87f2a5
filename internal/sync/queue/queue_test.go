// Package queue provides unit tests for the durable pending-action queue.
package queue

import (
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scholaris-app/scholaris/core/internal/db"
	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
	"github.com/scholaris-app/scholaris/core/internal/models"
)

// setupQueue creates a queue over an in-memory database.
func setupQueue(t *testing.T) *ActionQueue {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	if err := db.EnsureSchema(database); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return NewActionQueue(db.NewRepository(database))
}

// TestEnqueue verifies creation defaults and validation.
func TestEnqueue(t *testing.T) {
	q := setupQueue(t)

	action, err := q.Enqueue("/attendance", "POST", []byte(`{"status":"present"}`))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if action.ID == "" {
		t.Error("Expected generated ID")
	}
	if action.Status != models.ActionStatusPending {
		t.Errorf("Status = %s, want pending", action.Status)
	}
	if action.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", action.RetryCount)
	}
}

// TestEnqueue_Validation verifies bad input never reaches the database.
func TestEnqueue_Validation(t *testing.T) {
	q := setupQueue(t)

	if _, err := q.Enqueue("", "POST", nil); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Empty endpoint: error = %v, want VALIDATION_ERROR", err)
	}
	if _, err := q.Enqueue("no-leading-slash", "POST", nil); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Bad endpoint: error = %v, want VALIDATION_ERROR", err)
	}
	if _, err := q.Enqueue("/x", "GET", nil); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("GET is not a mutation: error = %v, want VALIDATION_ERROR", err)
	}

	pending, _ := q.ListPending()
	if len(pending) != 0 {
		t.Errorf("Expected empty queue after rejected input, got %d", len(pending))
	}
}

// TestEnqueue_DrainTrigger verifies the trigger fires on enqueue.
func TestEnqueue_DrainTrigger(t *testing.T) {
	q := setupQueue(t)

	var wg sync.WaitGroup
	wg.Add(1)
	fired := false
	q.SetDrainTrigger(func() {
		fired = true
		wg.Done()
	})

	if _, err := q.Enqueue("/x", "POST", nil); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	wg.Wait()
	if !fired {
		t.Error("Expected drain trigger to fire")
	}
}

// TestListPending_FIFO verifies oldest-first replay order.
func TestListPending_FIFO(t *testing.T) {
	q := setupQueue(t)

	for i := 1; i <= 5; i++ {
		if _, err := q.Enqueue(fmt.Sprintf("/writes/%d", i), "POST", nil); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	pending, err := q.ListPending()
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 5 {
		t.Fatalf("Expected 5 pending, got %d", len(pending))
	}
	for i, a := range pending {
		want := fmt.Sprintf("/writes/%d", i+1)
		if a.Endpoint != want {
			t.Errorf("Position %d = %s, want %s", i, a.Endpoint, want)
		}
	}
}

// TestStatusTransitions verifies the success path and idempotency.
func TestStatusTransitions(t *testing.T) {
	q := setupQueue(t)

	action, err := q.Enqueue("/x", "PUT", nil)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if err := q.MarkSyncing(action); err != nil {
		t.Fatalf("MarkSyncing failed: %v", err)
	}
	if action.Status != models.ActionStatusSyncing {
		t.Errorf("Status = %s, want syncing", action.Status)
	}
	if action.LastAttemptAt == 0 {
		t.Error("Expected attempt timestamp")
	}

	if err := q.MarkCompleted(action); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	if action.Status != models.ActionStatusCompleted {
		t.Errorf("Status = %s, want completed", action.Status)
	}

	// Idempotent: second completion is a no-op, no error
	if err := q.MarkCompleted(action); err != nil {
		t.Errorf("Second MarkCompleted: %v", err)
	}
	// And a completed action cannot regress
	if err := q.MarkFailed(action, fmt.Errorf("late failure")); err != nil {
		t.Errorf("MarkFailed on completed: %v", err)
	}
	if action.Status != models.ActionStatusCompleted || action.RetryCount != 0 {
		t.Errorf("Completed action mutated: %+v", action)
	}

	pending, _ := q.ListPending()
	if len(pending) != 0 {
		t.Errorf("Completed action still listed as pending")
	}
}

// TestRetryCeiling verifies 3 failures make an action terminal and
// excluded from further drains.
func TestRetryCeiling(t *testing.T) {
	q := setupQueue(t)

	action, err := q.Enqueue("/x", "POST", nil)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	for i := 1; i <= MaxRetries; i++ {
		if err := q.MarkSyncing(action); err != nil {
			t.Fatalf("MarkSyncing failed: %v", err)
		}
		if err := q.MarkFailed(action, fmt.Errorf("attempt %d refused", i)); err != nil {
			t.Fatalf("MarkFailed failed: %v", err)
		}

		pending, _ := q.ListPending()
		if i < MaxRetries && len(pending) != 1 {
			t.Errorf("After failure %d: expected still eligible, got %d pending", i, len(pending))
		}
	}

	if action.RetryCount != MaxRetries {
		t.Errorf("RetryCount = %d, want %d", action.RetryCount, MaxRetries)
	}
	if action.Status != models.ActionStatusFailed {
		t.Errorf("Status = %s, want failed", action.Status)
	}
	if action.LastError != "attempt 3 refused" {
		t.Errorf("LastError = %q", action.LastError)
	}

	pending, _ := q.ListPending()
	if len(pending) != 0 {
		t.Error("Terminally failed action still eligible")
	}

	// Further failures are no-ops past the ceiling
	if err := q.MarkFailed(action, fmt.Errorf("extra")); err != nil {
		t.Errorf("MarkFailed past ceiling: %v", err)
	}
	if action.RetryCount != MaxRetries {
		t.Errorf("RetryCount grew past ceiling: %d", action.RetryCount)
	}
}

// TestBackoffDelay verifies the 2^n schedule.
func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		retries int
		want    time.Duration
	}{
		{0, 0},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{9, 8 * time.Second}, // capped at the ceiling's delay
	}

	for _, tt := range tests {
		if got := BackoffDelay(tt.retries); got != tt.want {
			t.Errorf("BackoffDelay(%d) = %v, want %v", tt.retries, got, tt.want)
		}
	}
}

// TestReadyForAttempt verifies backoff gating.
func TestReadyForAttempt(t *testing.T) {
	q := setupQueue(t)
	now := time.Now()

	fresh := &models.PendingAction{Status: models.ActionStatusPending}
	if !q.ReadyForAttempt(fresh, now) {
		t.Error("Fresh pending action should always be ready")
	}

	failed := &models.PendingAction{
		Status:        models.ActionStatusFailed,
		RetryCount:    2,
		LastAttemptAt: now.Add(-3 * time.Second).Unix(),
	}
	if q.ReadyForAttempt(failed, now) {
		t.Error("Failed action inside its 4s backoff should not be ready")
	}

	failed.LastAttemptAt = now.Add(-5 * time.Second).Unix()
	if !q.ReadyForAttempt(failed, now) {
		t.Error("Failed action past its 4s backoff should be ready")
	}
}

// TestStats verifies status counts.
func TestStats(t *testing.T) {
	q := setupQueue(t)

	a, _ := q.Enqueue("/a", "POST", nil)
	q.Enqueue("/b", "POST", nil)
	q.MarkSyncing(a)
	q.MarkCompleted(a)

	stats, err := q.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["pending"] != 1 || stats["completed"] != 1 {
		t.Errorf("Stats = %v", stats)
	}
}
