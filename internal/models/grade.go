// Package models provides data model definitions for Scholaris Core.
package models

// GradeResult mirrors the remote exam/assessment result entity.
type GradeResult struct {
	ID           string  `json:"id"`
	SchoolID     string  `json:"school_id"`
	StudentID    string  `json:"student_id"`
	Subject      string  `json:"subject"`
	Term         string  `json:"term"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"max_score"`
	Grade        string  `json:"grade,omitempty"` // letter grade as assigned by the server
	LastSyncedAt int64   `json:"last_synced_at"`
}

// Key returns the stable cache identifier for the result.
func (g GradeResult) Key() string {
	return g.ID
}

// Percentage returns the score as a percentage, or 0 when MaxScore is unset.
func (g GradeResult) Percentage() float64 {
	if g.MaxScore <= 0 {
		return 0
	}
	return g.Score / g.MaxScore * 100
}
