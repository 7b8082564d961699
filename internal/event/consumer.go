// Package event consumes identity events that affect storefront sessions.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/validator"
)

// TopicSessionEnded is published by the identity provider when a browsing
// session is logged out or expires.
const TopicSessionEnded = "identity.session.ended"

// ConsumerGroupID is the storefront's consumer group.
const ConsumerGroupID = "storefront"

// SessionEndedData is the payload of an identity.session.ended event.
type SessionEndedData struct {
	SessionID string `json:"session_id" validate:"required,max=128,printascii"`
	// Clear empties the session's wishlist, cart and comparison list before
	// it is dropped, for logouts on shared devices.
	Clear bool `json:"clear"`
}

// SessionEnder ends live sessions. *session.Manager implements it.
type SessionEnder interface {
	End(ctx context.Context, id string, clear bool) error
}

// ConsumerHandler routes identity events to the session manager.
type ConsumerHandler struct {
	sessions SessionEnder
	logger   *slog.Logger
}

// NewConsumerHandler creates a handler.
func NewConsumerHandler(sessions SessionEnder, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{sessions: sessions, logger: logger}
}

// Handle dispatches on event type. Unknown types are logged and acknowledged.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicSessionEnded:
		return h.handleSessionEnded(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (h *ConsumerHandler) handleSessionEnded(ctx context.Context, event *pkgkafka.Event) error {
	var data SessionEndedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.EventType, err)
	}
	if err := validator.Validate(data); err != nil {
		return fmt.Errorf("invalid %s payload: %w", event.EventType, err)
	}

	if err := h.sessions.End(ctx, data.SessionID, data.Clear); err != nil {
		return fmt.Errorf("end session %s: %w", data.SessionID, err)
	}

	h.logger.InfoContext(ctx, "session ended by identity event",
		slog.String("event_id", event.EventID),
		slog.String("session_id", data.SessionID),
		slog.Bool("clear", data.Clear),
	)
	return nil
}

// ConsumerConfig wires the session-ended consumer.
type ConsumerConfig struct {
	Brokers []string
	GroupID string
	// Seen deduplicates redelivered events. Nil disables deduplication.
	Seen pkgkafka.IdempotencyStore
	// DLQ receives events that fail every attempt. Nil drops them.
	DLQ *pkgkafka.DLQProducer
}

// NewConsumer creates the Kafka consumer for TopicSessionEnded.
func NewConsumer(cfg ConsumerConfig, handler *ConsumerHandler, logger *slog.Logger) *pkgkafka.Consumer {
	group := cfg.GroupID
	if group == "" {
		group = ConsumerGroupID
	}

	handle := handler.Handle
	if cfg.Seen != nil {
		handle = pkgkafka.IdempotentHandler(cfg.Seen, handle, logger)
	}

	c := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:  cfg.Brokers,
		GroupID:  group,
		Topic:    TopicSessionEnded,
		MinBytes: 1,
		MaxBytes: 10e6,
	}, handle, logger)

	if cfg.DLQ != nil {
		c.WithDLQ(cfg.DLQ)
	}
	return c
}
