package stream

import (
	"context"
	"sync"
	"time"

	"github.com/basekit-io/basekit/internal/server/models"
)

// Event types carried on the watch stream.
const (
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event describes a change to a user record for the watch stream.
// Record is populated for updates and nil for deletes.
type Event struct {
	Type   string
	UserID string
	Record *models.User
	At     time.Time
}

// Updated builds an update event for the given record.
func Updated(u *models.User) Event {
	return Event{Type: EventUpdated, UserID: u.ID, Record: u, At: time.Now().UTC()}
}

// Deleted builds a delete event for the given user id.
func Deleted(userID string) Event {
	return Event{Type: EventDeleted, UserID: userID, At: time.Now().UTC()}
}

// Hub fan-outs user record change events to active watch subscribers
// (SSE clients). Subscriptions are scoped to a single user id.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[int]chan Event
	next int
}

// NewHub initialises an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[int]chan Event),
	}
}

// Subscribe registers a subscriber for events about the given user and
// returns a channel which will receive them. The channel is closed when
// the provided context ends.
func (h *Hub) Subscribe(ctx context.Context, userID string) <-chan Event {
	ch := make(chan Event, 16)

	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan Event)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[userID], id)
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers of its user.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[evt.UserID] {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// SubscriberCount reports how many subscribers are watching the user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
