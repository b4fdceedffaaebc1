package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditPublisher adapts the dispatcher to the token service's audit sink
// contract. Each auth event becomes a dispatched Event carrying the precise
// failure reason; the HTTP edge never sees it.
type AuditPublisher struct {
	dispatcher Dispatcher
}

// NewAuditPublisher wraps a dispatcher.
func NewAuditPublisher(dispatcher Dispatcher) *AuditPublisher {
	return &AuditPublisher{dispatcher: dispatcher}
}

// LogAuthEvent publishes one audit event.
func (p *AuditPublisher) LogAuthEvent(eventType string, fields map[string]any) {
	event := Event{
		ID:        uuid.NewString(),
		Type:      EventType(eventType),
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}
	_ = p.dispatcher.Publish(context.Background(), event)
}
