// Package realtime fans urgent-ticket events out to connected dashboard
// subscribers over WebSocket.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sentimatrix/sentimatrix/internal/domain"
)

// subscriberBuffer is the per-subscriber queue depth. A subscriber that
// falls this far behind starts losing events rather than blocking the
// publisher.
const subscriberBuffer = 16

// Subscriber is one connected client's event queue.
type Subscriber struct {
	id string
	c  chan domain.ProcessedEmail
}

// ID returns the subscriber's registry key.
func (s *Subscriber) ID() string { return s.id }

// C is the receive side of the subscriber's event queue.
func (s *Subscriber) C() <-chan domain.ProcessedEmail { return s.c }

// Hub tracks currently connected subscribers and publishes urgent tickets
// to all of them. Join carries no replay of past events.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscriber
	logger *slog.Logger
}

var _ domain.TicketBroadcaster = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]*Subscriber),
		logger: logger,
	}
}

// Subscribe registers a new subscriber and returns its queue.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		id: uuid.NewString(),
		c:  make(chan domain.ProcessedEmail, subscriberBuffer),
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()

	return sub
}

// Unsubscribe removes a subscriber from the registry. Safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	delete(h.subs, sub.id)
	h.mu.Unlock()
}

// Count returns the number of currently connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish enqueues the ticket for every currently connected subscriber
// without waiting for consumption. A subscriber with a full queue is
// skipped; zero subscribers is not an error.
func (h *Hub) Publish(ticket domain.ProcessedEmail) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		select {
		case sub.c <- ticket:
		default:
			h.logger.Warn("subscriber queue full, dropping event", "subscriber", sub.id)
		}
	}
}
