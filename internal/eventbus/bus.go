// Package eventbus carries the compilation lifecycle notifications between
// the engine and its observers. Delivery is synchronous and in-process: a
// Publish call runs every matching handler inline, in registration order,
// before it returns.
package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// Journal persists published events for later inspection. This is a subset
// of journal.Journal to avoid a package cycle.
type Journal interface {
	Append(ctx context.Context, runID, eventType string, payload []byte) error
}

// Handler processes an Event; a non-nil error aborts delivery and fails the
// publish, which is how instrumentation defects fail the run fast.
type Handler func(Event) error

// Bus is a simple synchronous pub/sub event bus. Each run constructs its
// own instance, so handlers never leak between runs or tests.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler

	journal Journal // optional
	runID   string
}

func NewBus() *Bus { return &Bus{subscribers: map[string][]Handler{}} }

// NewBusWithJournal creates a bus that appends every published event to the
// journal before delivering it. Journal failures are logged and never fail
// the run.
func NewBusWithJournal(j Journal, runID string) *Bus {
	return &Bus{
		subscribers: map[string][]Handler{},
		journal:     j,
		runID:       runID,
	}
}

// Subscribe registers a handler for a given event name.
func (b *Bus) Subscribe(event string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[event] = append(b.subscribers[event], h)
	b.mu.Unlock()
}

// Reset removes all subscriptions. Used for isolation between test runs.
func (b *Bus) Reset() {
	b.mu.Lock()
	b.subscribers = map[string][]Handler{}
	b.mu.Unlock()
}

// Publish delivers an event to all handlers synchronously, in registration
// order. The first handler error stops delivery and is returned.
func (b *Bus) Publish(e Event) error {
	if b.journal != nil {
		if err := b.journal.Append(context.Background(), b.runID, e.Name(), e.Payload()); err != nil {
			slog.Warn("Failed to journal event", "event", e.Name(), "error", err)
		}
	}

	b.mu.RLock()
	hs := append([]Handler(nil), b.subscribers[e.Name()]...)
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(e); err != nil {
			return err
		}
	}
	return nil
}
