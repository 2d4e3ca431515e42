package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/form-builder-service/internal/events"
)

// eventNotifier publishes domain events on behalf of the services. A failed
// publish is logged and never fails the calling operation.
type eventNotifier struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func newEventNotifier(publisher events.EventPublisher, logger *slog.Logger) *eventNotifier {
	return &eventNotifier{
		publisher: publisher,
		logger:    logger,
	}
}

func (n *eventNotifier) notify(ctx context.Context, eventType events.EventType, data interface{}) {
	if n == nil || n.publisher == nil {
		return
	}

	event := events.NewEvent(eventType, data)
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish event",
			"event_id", event.ID,
			"event_type", eventType,
			"error", err)
	}
}
