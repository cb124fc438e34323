package handlers

import (
	"net/http"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

// SessionHandler exposes the session history and research gaps.
type SessionHandler struct {
	sessions SessionStoreFactory
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions SessionStoreFactory) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// sessionIDFromRequest reads the session id from the X-Session-ID header or
// the session_id query parameter.
func sessionIDFromRequest(r *http.Request) string {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return id
	}
	return r.URL.Query().Get("session_id")
}

// GetSession handles GET /api/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	store := h.sessions(sessionIDFromRequest(r))
	session := store.Get(r.Context())
	respondWithJSON(w, http.StatusOK, session)
}

// ClearSession handles DELETE /api/session
func (h *SessionHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromRequest(r)
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "session id is required")
		return
	}

	store := h.sessions(id)
	if err := store.Clear(r.Context()); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to clear session")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// GetResearchGaps handles GET /api/session/gaps
func (h *SessionHandler) GetResearchGaps(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromRequest(r)
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "session id is required")
		return
	}

	store := h.sessions(id)

	stage := entities.JourneyStage(r.URL.Query().Get("stage"))
	if stage == "" {
		stage = store.Get(r.Context()).LastStage()
	}
	if !stage.Valid() {
		respondWithError(w, http.StatusBadRequest, "unknown journey stage")
		return
	}

	gaps := store.ResearchGaps(r.Context(), stage)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"stage": stage,
		"gaps":  gaps,
		"count": len(gaps),
	})
}
