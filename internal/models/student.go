// Package models provides data model definitions for Scholaris Core.
package models

// Student mirrors the remote student entity plus local sync bookkeeping.
// SchoolID is the owning tenant; LastSyncedAt records the most recent
// confirmed read of this record, not the wall clock of unrelated syncs.
type Student struct {
	ID            string `json:"id"`
	SchoolID      string `json:"school_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	ClassName     string `json:"class_name"`
	GuardianPhone string `json:"guardian_phone,omitempty"`
	Status        string `json:"status"` // active, suspended, graduated
	LastSyncedAt  int64  `json:"last_synced_at"`
}

// Key returns the stable cache identifier for the student.
func (s Student) Key() string {
	return s.ID
}

// FullName returns the display name for the student.
func (s Student) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	return s.FirstName + " " + s.LastName
}
