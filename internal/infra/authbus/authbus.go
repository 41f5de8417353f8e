// Package authbus is an in-process fan-out bus for authentication state
// change events.
package authbus

import (
	"sync"

	"daysoff/internal/domain/service"
)

const subscriberBuffer = 16

// Bus implements service.AuthEventBus with per-subscriber buffered channels.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan service.AuthEvent
	closed bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs: make(map[int]chan service.AuthEvent),
	}
}

// NewAuthEventBus adapts New to the domain interface for injection.
func NewAuthEventBus() service.AuthEventBus {
	return New()
}

// Publish delivers the event to every subscriber. A subscriber whose buffer
// is full misses the event; publishers never block.
func (b *Bus) Publish(event service.AuthEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function removes
// the subscription and closes its channel; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan service.AuthEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan service.AuthEvent, subscriberBuffer)
	if b.closed {
		close(ch)

		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}

	return ch, cancel
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
