// Package handlers provides the localhost REST surface of the desktop shell.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
	"github.com/scholaris-app/scholaris/core/internal/logging"
	"github.com/scholaris-app/scholaris/core/internal/sync"
)

// SyncHandler exposes sync control and diagnostics endpoints.
type SyncHandler struct {
	engine sync.Orchestrator
}

// NewSyncHandler creates a SyncHandler for the given engine.
func NewSyncHandler(engine sync.Orchestrator) *SyncHandler {
	return &SyncHandler{engine: engine}
}

// TriggerSync handles POST /api/sync.
// Kicks off a full sync and reports the per-entity outcome. A skipped
// sync (offline, signed out, or already running) returns 202 with
// started=false so the UI can distinguish "nothing happened".
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results := h.engine.RunFullSync(r.Context())
	if results == nil {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"started": false,
		})
		return
	}

	entities := make(map[string]interface{}, len(results))
	failed := 0
	for entity, err := range results {
		if err != nil {
			failed++
			entities[string(entity)] = err.Error()
		} else {
			entities[string(entity)] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"started":  true,
		"failed":   failed,
		"entities": entities,
	})
}

// Status handles GET /api/sync/status.
// Returns queue counts by status and per-entity sync metadata.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.engine.QueueStats()
	if err != nil {
		writeError(w, err)
		return
	}
	meta, err := h.engine.Metadata()
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	entities := make([]map[string]interface{}, 0, len(meta))
	for _, m := range meta {
		entities = append(entities, map[string]interface{}{
			"entity_type":    m.EntityType,
			"last_synced_at": m.LastSyncedAt,
			"version":        m.Version,
			"age_seconds":    int64(m.Age(now).Seconds()),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"queue":    stats,
		"entities": entities,
	})
}

// EnqueueAction handles POST /api/actions.
// Records a mutation in the durable queue; while online the engine
// replays it shortly after.
func (h *SyncHandler) EnqueueAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Endpoint string          `json:"endpoint"`
		Method   string          `json:"method"`
		Payload  json.RawMessage `json:"payload"`
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(body, &request); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	action, err := h.engine.QueueAction(request.Endpoint, request.Method, request.Payload)
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Info("Action queued via API", map[string]interface{}{
		"action_id": action.ID.String(),
		"endpoint":  action.Endpoint,
	})
	writeJSON(w, http.StatusCreated, action)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy onto HTTP statuses for the local UI.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.ErrValidation, apperrors.ErrInvalid:
		status = http.StatusBadRequest
	case apperrors.ErrUnauthorized, apperrors.ErrNoTenant, apperrors.ErrSessionExpired:
		status = http.StatusUnauthorized
	case apperrors.ErrNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]interface{}{
		"code":    string(apperrors.CodeOf(err)),
		"message": err.Error(),
	})
}
