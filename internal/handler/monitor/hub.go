package monitor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one live update pushed to monitoring clients watching a
// session.
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType, sessionID string, data interface{}) Event {
	return Event{
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}
}

const subscriberBuffer = 16

// Hub fans session events out to websocket subscribers. Publish never
// blocks; a subscriber that cannot keep up loses events instead of
// stalling the request path.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[string]chan Event)}
}

// Subscribe registers a watcher for a session and returns its
// subscription id and event channel.
func (h *Hub) Subscribe(sessionID string) (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[string]chan Event)
	}
	h.subscribers[sessionID][id] = ch
	return id, ch
}

// Unsubscribe removes a watcher and closes its channel.
func (h *Hub) Unsubscribe(sessionID, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[sessionID]
	if !ok {
		return
	}
	ch, ok := subs[id]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(h.subscribers, sessionID)
	}
	close(ch)
}

// Publish delivers an event to every watcher of the session. Slow
// watchers are skipped.
func (h *Hub) Publish(sessionID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[sessionID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports the number of active watchers for a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}
