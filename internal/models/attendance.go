// Package models provides data model definitions for Scholaris Core.
package models

import "time"

// AttendanceStatus represents a single day's attendance outcome.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// AttendanceRecord mirrors the remote attendance entity. Attendance is
// time-series data, so pulls use a trailing date window rather than a
// fixed record count.
type AttendanceRecord struct {
	ID           string           `json:"id"`
	SchoolID     string           `json:"school_id"`
	StudentID    string           `json:"student_id"`
	Date         string           `json:"date"` // ISO 8601 date, e.g. 2026-08-28
	Status       AttendanceStatus `json:"status"`
	MarkedBy     string           `json:"marked_by,omitempty"`
	Note         string           `json:"note,omitempty"`
	LastSyncedAt int64            `json:"last_synced_at"`
}

// Key returns the stable cache identifier for the record.
func (a AttendanceRecord) Key() string {
	return a.ID
}

// Day parses the record date. Returns the zero time if the date is malformed.
func (a AttendanceRecord) Day() time.Time {
	t, err := time.Parse("2006-01-02", a.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
