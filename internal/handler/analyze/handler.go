package analyze

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/priyansh-soni/honeypot-agent/internal/handler/monitor"
	model "github.com/priyansh-soni/honeypot-agent/internal/model/session"
	"github.com/priyansh-soni/honeypot-agent/internal/service/callback"
	"github.com/priyansh-soni/honeypot-agent/internal/service/engage"
	"github.com/priyansh-soni/honeypot-agent/pkg/utils"
)

// deliveryTimeout bounds the background final-result delivery,
// including its retries.
const deliveryTimeout = 60 * time.Second

// Handler serves the message analysis endpoint.
type Handler struct {
	coordinator *engage.Coordinator
	callbacks   *callback.Client
	hub         *monitor.Hub
}

// New creates the analyze handler. callbacks and hub may be nil when
// those features are disabled.
func New(coordinator *engage.Coordinator, callbacks *callback.Client, hub *monitor.Hub) *Handler {
	return &Handler{
		coordinator: coordinator,
		callbacks:   callbacks,
		hub:         hub,
	}
}

// RegisterRoutes registers the analyze route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID           string            `json:"sessionId"`
		Message             model.Message     `json:"message"`
		ConversationHistory []model.Message   `json:"conversationHistory"`
		Metadata            map[string]string `json:"metadata"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	result, err := h.coordinator.ProcessMessage(r.Context(), engage.Request{
		SessionID: payload.SessionID,
		Message:   payload.Message,
		History:   payload.ConversationHistory,
		Metadata:  payload.Metadata,
	})
	if err != nil {
		log.Printf("[analyze] cycle failed session=%s: %v", payload.SessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	if h.hub != nil {
		h.hub.Publish(payload.SessionID, monitor.NewEvent("cycle", payload.SessionID, result))
	}

	if !result.ContinueConversation {
		h.finishConversation(payload.SessionID)
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// finishConversation pushes the terminal event and delivers the final
// result in the background so the response is not delayed by retries.
func (h *Handler) finishConversation(sessionID string) {
	summary, err := h.coordinator.Snapshot(sessionID)
	if err != nil {
		log.Printf("[analyze] final snapshot failed session=%s: %v", sessionID, err)
		return
	}

	if h.hub != nil {
		h.hub.Publish(sessionID, monitor.NewEvent("ended", sessionID, summary))
	}

	if h.callbacks == nil || !h.callbacks.Enabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := h.callbacks.Deliver(ctx, callback.BuildFinalResult(summary)); err != nil {
			log.Printf("[analyze] final callback failed session=%s: %v", sessionID, err)
		}
	}()
}
