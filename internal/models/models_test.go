// Package models tests for data model definitions.
package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestUUID_Value verifies the Value() method returns the raw string.
func TestUUID_Value(t *testing.T) {
	id := UUID("123e4567-e89b-12d3-a456-426614174000")

	val, err := id.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	if val != "123e4567-e89b-12d3-a456-426614174000" {
		t.Errorf("Value() = %v, want the raw UUID string", val)
	}
}

// TestUUID_Scan verifies nil, []byte and string scanning.
func TestUUID_Scan(t *testing.T) {
	var id UUID

	if err := id.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if id != "" {
		t.Errorf("Scan(nil) = %q, want empty string", id)
	}

	if err := id.Scan([]byte("abc-123")); err != nil {
		t.Fatalf("Scan([]byte) error = %v", err)
	}
	if id != "abc-123" {
		t.Errorf("Scan([]byte) = %q, want 'abc-123'", id)
	}

	if err := id.Scan("def-456"); err != nil {
		t.Fatalf("Scan(string) error = %v", err)
	}
	if id != "def-456" {
		t.Errorf("Scan(string) = %q, want 'def-456'", id)
	}
}

// TestPendingAction_Terminal verifies terminal state detection.
func TestPendingAction_Terminal(t *testing.T) {
	tests := []struct {
		name       string
		status     ActionStatus
		retryCount int
		want       bool
	}{
		{"pending is not terminal", ActionStatusPending, 0, false},
		{"syncing is not terminal", ActionStatusSyncing, 2, false},
		{"completed is terminal", ActionStatusCompleted, 0, true},
		{"failed below ceiling is retryable", ActionStatusFailed, 2, false},
		{"failed at ceiling is terminal", ActionStatusFailed, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &PendingAction{Status: tt.status, RetryCount: tt.retryCount}
			if got := a.Terminal(3); got != tt.want {
				t.Errorf("Terminal(3) = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPendingAction_LastAttemptTime verifies zero handling.
func TestPendingAction_LastAttemptTime(t *testing.T) {
	a := &PendingAction{}
	if !a.LastAttemptTime().IsZero() {
		t.Error("Expected zero time for never-attempted action")
	}

	a.LastAttemptAt = 1700000000
	if a.LastAttemptTime().Unix() != 1700000000 {
		t.Errorf("LastAttemptTime() = %v, want unix 1700000000", a.LastAttemptTime())
	}
}

// TestSyncMetadata_Age verifies last-sync age calculation.
func TestSyncMetadata_Age(t *testing.T) {
	now := time.Now()
	m := &SyncMetadata{
		EntityType:   "students",
		LastSyncedAt: now.Add(-5 * time.Minute).Unix(),
		Version:      3,
	}

	age := m.Age(now)
	if age < 4*time.Minute || age > 6*time.Minute {
		t.Errorf("Age() = %v, want ~5m", age)
	}
}

// TestStudent_FullName verifies display name assembly.
func TestStudent_FullName(t *testing.T) {
	s := Student{FirstName: "Aisha", LastName: "Rahman"}
	if s.FullName() != "Aisha Rahman" {
		t.Errorf("FullName() = %q", s.FullName())
	}

	s = Student{LastName: "Rahman"}
	if s.FullName() != "Rahman" {
		t.Errorf("FullName() = %q, want last name only", s.FullName())
	}
}

// TestAttendanceRecord_Day verifies date parsing.
func TestAttendanceRecord_Day(t *testing.T) {
	a := AttendanceRecord{Date: "2026-08-28"}
	day := a.Day()
	if day.Year() != 2026 || day.Month() != time.August || day.Day() != 28 {
		t.Errorf("Day() = %v", day)
	}

	a.Date = "not-a-date"
	if !a.Day().IsZero() {
		t.Error("Expected zero time for malformed date")
	}
}

// TestGradeResult_Percentage verifies score percentage calculation.
func TestGradeResult_Percentage(t *testing.T) {
	g := GradeResult{Score: 45, MaxScore: 60}
	if got := g.Percentage(); got < 74.9 || got > 75.1 {
		t.Errorf("Percentage() = %v, want 75", got)
	}

	g.MaxScore = 0
	if g.Percentage() != 0 {
		t.Error("Expected 0 percentage when MaxScore is unset")
	}
}

// TestEntityJSONRoundTrip verifies remote payload field names survive
// marshal/unmarshal, since cached records store the remote JSON shape.
func TestEntityJSONRoundTrip(t *testing.T) {
	n := Notification{
		ID:       "n-1",
		SchoolID: "school-1",
		Title:    "Term report published",
		Category: "grade",
	}

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Notification
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.ID != "n-1" || decoded.SchoolID != "school-1" || decoded.Category != "grade" {
		t.Errorf("Round trip mismatch: %+v", decoded)
	}
}
