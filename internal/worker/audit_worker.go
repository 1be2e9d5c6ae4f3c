package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-api/internal/events"
)

// StartAuditWorker subscribes a logging handler to every security-relevant
// event so the audit trail ends up in the structured log stream.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	handler := func(_ context.Context, event events.Event) error {
		logger.Info("audit",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("actor", event.Actor.Username),
			zap.String("role", string(event.Actor.Role)),
			zap.Time("at", event.Timestamp),
			zap.Any("payload", event.Payload),
		)
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventLoginSucceeded,
		events.EventLoginFailed,
		events.EventProductCreated,
		events.EventProductUpdated,
		events.EventProductDeleted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
