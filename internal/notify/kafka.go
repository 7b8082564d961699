package notify

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// Kafka topic and envelope constants for notification events.
const (
	TopicNotificationEmitted = "storefront.notification.emitted"
	AggregateTypeSession     = "session"
	SourceStorefront         = "storefront"
)

// Publisher is the subset of pkgkafka.Producer used by the Kafka notifier.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// NotificationEmittedData is the payload of a notification.emitted event.
type NotificationEmittedData struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
}

// Kafka publishes every notification of one session as a Kafka event.
// Publish failures are logged and swallowed.
type Kafka struct {
	publisher Publisher
	sessionID string
	logger    *slog.Logger
}

// NewKafka creates a Kafka notifier for a session.
func NewKafka(publisher Publisher, sessionID string, logger *slog.Logger) *Kafka {
	return &Kafka{publisher: publisher, sessionID: sessionID, logger: logger}
}

// Notify publishes n.
func (k *Kafka) Notify(ctx context.Context, n domain.Notification) {
	data := NotificationEmittedData{
		SessionID: k.sessionID,
		Title:     n.Title,
		Kind:      string(n.Kind),
		Detail:    n.Detail,
	}

	event, err := pkgkafka.NewEvent(TopicNotificationEmitted, k.sessionID, AggregateTypeSession, SourceStorefront, data)
	if err != nil {
		k.logger.ErrorContext(ctx, "failed to build notification event",
			slog.String("session_id", k.sessionID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := k.publisher.Publish(ctx, TopicNotificationEmitted, event); err != nil {
		k.logger.ErrorContext(ctx, "failed to publish notification event",
			slog.String("session_id", k.sessionID),
			slog.String("error", err.Error()),
		)
	}
}
