package kafka

import (
	"context"
	"log/slog"
)

// IdempotencyStore records which event ids have been handled.
// Implementations must be safe for concurrent use.
type IdempotencyStore interface {
	// Contains reports whether eventID has already been handled.
	Contains(ctx context.Context, eventID string) (bool, error)
	// Add marks eventID as handled.
	Add(ctx context.Context, eventID string) error
}

// IdempotentHandler skips events whose id the store has already seen. An id
// is recorded only after inner succeeds. Store lookup failures fall through
// to inner, so delivery is at-least-once.
func IdempotentHandler(store IdempotencyStore, inner Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, event *Event) error {
		if event.EventID == "" {
			return inner(ctx, event)
		}

		exists, err := store.Contains(ctx, event.EventID)
		if err != nil {
			logger.WarnContext(ctx, "idempotency store lookup failed, processing anyway",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
			return inner(ctx, event)
		}

		if exists {
			d := deliveryFrom(ctx)
			ConsumerMessagesDuplicate.WithLabelValues(d.topic, d.group).Inc()
			logger.DebugContext(ctx, "skipping duplicate event",
				slog.String("event_id", event.EventID),
				slog.String("event_type", event.EventType),
			)
			return nil
		}

		if err := inner(ctx, event); err != nil {
			return err
		}

		if err := store.Add(ctx, event.EventID); err != nil {
			logger.WarnContext(ctx, "failed to record event id",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
}
