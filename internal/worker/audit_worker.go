package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/fleetwatch/monitor-service/internal/events"
	"github.com/fleetwatch/monitor-service/internal/observability"
)

var auditEventTypes = []events.EventType{
	events.EventTokenIssued,
	events.EventValidationFailed,
	events.EventTokenRevoked,
	events.EventTokenRefreshed,
	events.EventTokensPurged,
}

// StartAuditWorker subscribes the audit log and metrics counters to every
// auth event type. The worker is the only consumer of the precise failure
// reasons carried in the event fields.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range auditEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			outcome, _ := event.Fields["outcome"].(string)
			metrics.RecordAuthEvent(string(event.Type), outcome)
			logger.Info("auth event",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Time("event_ts", event.Timestamp),
				zap.Any("fields", event.Fields),
			)
			return nil
		})
	}
}
