package session

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionstore "github.com/priyansh-soni/honeypot-agent/internal/service/session"
	"github.com/priyansh-soni/honeypot-agent/pkg/utils"
)

// Handler exposes read access to session summaries.
type Handler struct {
	store *sessionstore.Store
}

// New creates the session handler.
func New(store *sessionstore.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}", h.handleGetSession)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionID is required")
		return
	}

	summary, err := h.store.Snapshot(sessionID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, summary)
}
