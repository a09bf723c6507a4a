package mapview

import "sync"

// EventType identifies a map lifecycle event.
type EventType string

const (
	// EventLoad fires at most once per session, when the map finished
	// loading and before any data-dependent event.
	EventLoad EventType = "load"
	// EventError carries a non-fatal map or data error.
	EventError EventType = "error"
	// EventStyleData fires when a newly selected style finished loading.
	EventStyleData EventType = "styledata"
)

// Event is a typed map lifecycle notification.
type Event struct {
	Type       EventType `json:"type"`
	Message    string    `json:"message,omitempty"`
	StyleKey   string    `json:"styleKey,omitempty"`
	Generation string    `json:"generation,omitempty"`
}

// Bus is a fan-out pub/sub for map lifecycle events.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
