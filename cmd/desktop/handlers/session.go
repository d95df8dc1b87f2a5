package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/scholaris-app/scholaris/core/internal/logging"
	"github.com/scholaris-app/scholaris/core/internal/session"
)

// SessionHandler manages the bearer token the engine operates under.
// Token issuance and refresh happen outside this process; the shell only
// receives the current token from the UI.
type SessionHandler struct {
	provider *session.TokenProvider
}

// NewSessionHandler creates a SessionHandler for the given provider.
func NewSessionHandler(provider *session.TokenProvider) *SessionHandler {
	return &SessionHandler{provider: provider}
}

// SetToken handles PUT /api/session.
func (h *SessionHandler) SetToken(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
	case http.MethodDelete:
		h.provider.Clear()
		logging.Info("Session cleared", nil)
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.provider.SetToken(request.Token); err != nil {
		writeError(w, err)
		return
	}

	tenantID, err := h.provider.TenantID()
	if err != nil {
		writeError(w, err)
		return
	}
	logging.Info("Session established", map[string]interface{}{
		"school_id": tenantID,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"school_id": tenantID,
	})
}
