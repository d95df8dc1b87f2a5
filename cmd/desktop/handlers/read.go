package handlers

import (
	"net/http"

	"github.com/scholaris-app/scholaris/core/internal/models"
	"github.com/scholaris-app/scholaris/core/internal/sync"
)

// ReadHandler serves entity reads through the engine's cache-fallback
// path: a live pull when online, last-synced data otherwise. Responses
// never fail on an empty cache; the UI gets an empty list.
type ReadHandler struct {
	engine *sync.Engine
}

// NewReadHandler creates a ReadHandler for the given engine.
func NewReadHandler(engine *sync.Engine) *ReadHandler {
	return &ReadHandler{engine: engine}
}

// Students handles GET /api/students.
func (h *ReadHandler) Students(w http.ResponseWriter, r *http.Request) {
	serveRead[models.Student](h, w, r, sync.EntityStudents)
}

// Attendance handles GET /api/attendance.
func (h *ReadHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	serveRead[models.AttendanceRecord](h, w, r, sync.EntityAttendance)
}

// Grades handles GET /api/grades.
func (h *ReadHandler) Grades(w http.ResponseWriter, r *http.Request) {
	serveRead[models.GradeResult](h, w, r, sync.EntityGrades)
}

// Conversations handles GET /api/conversations.
func (h *ReadHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	serveRead[models.Conversation](h, w, r, sync.EntityConversations)
}

// Notifications handles GET /api/notifications.
func (h *ReadHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	serveRead[models.Notification](h, w, r, sync.EntityNotifications)
}

func serveRead[T any](h *ReadHandler, w http.ResponseWriter, r *http.Request, entity sync.EntityType) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := sync.ReadThrough[T](r.Context(), h.engine, entity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": records,
		"count": len(records),
	})
}
