package monitor

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Handler exposes a websocket endpoint streaming live session events to
// monitoring dashboards.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// New creates a monitor handler bound to a hub.
func New(hub *Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the monitor websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/monitor/{sessionID}", h.handleMonitor)
}

func (h *Handler) handleMonitor(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[monitor] upgrade failed session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	subID, events := h.hub.Subscribe(sessionID)
	defer h.hub.Unsubscribe(sessionID, subID)

	log.Printf("[monitor] watcher connected session=%s sub=%s", sessionID, subID)

	// Reader goroutine only watches for the client closing the
	// connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(NewEvent("connected", sessionID, nil)); err != nil {
		return
	}

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			log.Printf("[monitor] watcher disconnected session=%s sub=%s", sessionID, subID)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("[monitor] write failed session=%s: %v", sessionID, err)
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
