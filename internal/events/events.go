// Package events provides in-process pub/sub for booking lifecycle events.
// Subscribers are fire-and-forget observers (metrics, mirrors, audit); the
// booking transaction never depends on their outcome.
package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Booking lifecycle event types.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
)

// Event is a typed notification with a JSON payload.
type Event struct {
	Type       string
	Payload    json.RawMessage
	OccurredAt time.Time
}

// Handler reacts to an event. Errors are the handler's problem; the bus
// drops them.
type Handler func(event Event)

// Bus is an in-process publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// PublishJSON marshals the payload and delivers the event to current
// subscribers synchronously, in subscription order.
func (b *Bus) PublishJSON(eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[eventType]...)
	b.mu.RUnlock()

	event := Event{Type: eventType, Payload: data, OccurredAt: time.Now()}
	for _, handler := range handlers {
		handler(event)
	}
	return nil
}
