package services

import (
	"sync"
)

// NotificationEvent tells a connected client that its inbox changed. Clients
// reload the inbox rather than trust the payload.
type NotificationEvent struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

type hubClient struct {
	userID uint
	ch     chan NotificationEvent
}

// NotificationHub fans notification events out to SSE connections.
type NotificationHub struct {
	clients map[string]hubClient
	mu      sync.RWMutex
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		clients: make(map[string]hubClient),
	}
}

// Subscribe registers a connection of userID and returns its event channel.
func (h *NotificationHub) Subscribe(clientID string, userID uint) <-chan NotificationEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	// buffered so a publisher never waits on a slow client
	ch := make(chan NotificationEvent, 16)
	h.clients[clientID] = hubClient{userID: userID, ch: ch}
	return ch
}

func (h *NotificationHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.ch)
		delete(h.clients, clientID)
	}
}

// Publish sends event to every connection of userID. Events for a full
// client buffer are dropped.
func (h *NotificationHub) Publish(userID uint, event NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.userID != userID {
			continue
		}
		select {
		case c.ch <- event:
		default:
		}
	}
}

func (h *NotificationHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
