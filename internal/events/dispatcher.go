package events

import (
	"context"
	"sync"
)

// Handler consumes one dispatched audit event.
type Handler func(ctx context.Context, event Event) error

// Dispatcher fans audit events out to subscribed handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler Handler)
}

// memoryDispatcher delivers events synchronously on the publishing
// goroutine. Handler errors are swallowed: an audit consumer must never fail
// the auth operation that produced the event.
type memoryDispatcher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
}

// NewInMemoryDispatcher returns a dispatcher with no subscribers.
func NewInMemoryDispatcher() Dispatcher {
	return &memoryDispatcher{subscribers: make(map[EventType][]Handler)}
}

func (d *memoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := make([]Handler, len(d.subscribers[event.Type]))
	copy(handlers, d.subscribers[event.Type])
	d.mu.RUnlock()

	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *memoryDispatcher) Subscribe(eventType EventType, handler Handler) {
	d.mu.Lock()
	d.subscribers[eventType] = append(d.subscribers[eventType], handler)
	d.mu.Unlock()
}
