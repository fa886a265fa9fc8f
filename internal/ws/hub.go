package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hoteza-pos/api/internal/events"
	"go.uber.org/zap"
)

// Hub maintains the set of connected dashboards and fans domain events out
// to them. It implements events.Publisher.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan events.Event

	// done is closed when Run returns.
	done chan struct{}

	log *zap.SugaredLogger
	mu  sync.RWMutex
}

func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.Event, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run is the hub loop. It returns when ctx is done, closing every client.
// After that, registering is refused and unregistering is a no-op.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				h.log.Errorw("failed to encode event", "type", event.Type, "error", err)
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(event.Type) {
					continue
				}
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop the connection.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds c to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c from the hub. It does nothing once the hub has
// stopped, since Run already closed every client.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Done is closed when the hub loop has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Publish queues e for broadcast. When the queue is full the event is
// dropped rather than blocking the caller.
func (h *Hub) Publish(_ context.Context, e events.Event) {
	select {
	case h.broadcast <- e:
	default:
		h.log.Warnw("event queue full, dropping event", "type", e.Type, "id", e.ID)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
