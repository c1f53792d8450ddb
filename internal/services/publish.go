package services

import (
	"context"
	"log/slog"

	"github.com/anonto42/circle/backend/internal/events"
)

// IdentityInvalidator is told when a stored identity changed underneath its cached copy
type IdentityInvalidator interface {
	Invalidate(id uint)
}

func publish(ctx context.Context, publisher events.Publisher, logger *slog.Logger, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish event", "event_type", event.Type, "subject_id", event.SubjectID, "error", err)
	}
}
