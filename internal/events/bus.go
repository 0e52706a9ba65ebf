package events

import "sync"

// Bus receives lifecycle events.
type Bus interface {
	Post(Event)
}

// Subscriber handles events delivered by an InMemoryBus.
type Subscriber func(Event)

// InMemoryBus delivers every event synchronously to its subscribers in
// subscription order. It is safe for concurrent use; subscribers must be too
// when files are parsed in parallel.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

// NewInMemoryBus creates a bus with the given initial subscribers.
func NewInMemoryBus(subscribers ...Subscriber) *InMemoryBus {
	return &InMemoryBus{subscribers: subscribers}
}

// Subscribe adds a subscriber for all subsequent events.
func (b *InMemoryBus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, s)
}

// Post implements Bus.
func (b *InMemoryBus) Post(e Event) {
	b.mu.RLock()
	subscribers := b.subscribers
	b.mu.RUnlock()

	for _, s := range subscribers {
		s(e)
	}
}

type discard struct{}

func (discard) Post(Event) {}

// Discard is a Bus that drops every event.
var Discard Bus = discard{}

// Recorder is a subscriber that keeps every event it sees.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Subscriber returns the function to subscribe with.
func (r *Recorder) Subscriber() Subscriber {
	return func(e Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	}
}

// Events returns the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
