// Package notify delivers user-facing messages emitted by the stores.
// Delivery is fire-and-forget: sinks report their own failures through
// logging and never back to the caller.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// Notifier receives notifications from the stores.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, n domain.Notification)

// Notify calls f.
func (f Func) Notify(ctx context.Context, n domain.Notification) { f(ctx, n) }

// Nop discards every notification.
var Nop Notifier = Func(func(context.Context, domain.Notification) {})

// Success builds a success notification.
func Success(title, detail string) domain.Notification {
	return domain.Notification{Title: title, Kind: domain.KindSuccess, Detail: detail, CreatedAt: time.Now().UTC()}
}

// Warning builds a warning notification.
func Warning(title, detail string) domain.Notification {
	return domain.Notification{Title: title, Kind: domain.KindWarning, Detail: detail, CreatedAt: time.Now().UTC()}
}

// Multi fans a notification out to every sink. A panicking sink is recovered
// and logged so the remaining sinks and the caller are unaffected.
type Multi struct {
	sinks  []Notifier
	logger *slog.Logger
}

// NewMulti creates a fan-out notifier.
func NewMulti(logger *slog.Logger, sinks ...Notifier) *Multi {
	return &Multi{sinks: sinks, logger: logger}
}

// Notify delivers n to every sink in order.
func (m *Multi) Notify(ctx context.Context, n domain.Notification) {
	for _, s := range m.sinks {
		m.deliver(ctx, s, n)
	}
}

func (m *Multi) deliver(ctx context.Context, s Notifier, n domain.Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			m.logger.ErrorContext(ctx, "notifier panic recovered",
				slog.Any("panic", rec),
				slog.String("title", n.Title),
			)
		}
	}()
	s.Notify(ctx, n)
}

// Log writes notifications to a structured logger.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging notifier.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Notify logs n at a level matching its kind.
func (l *Log) Notify(ctx context.Context, n domain.Notification) {
	level := slog.LevelInfo
	switch n.Kind {
	case domain.KindWarning:
		level = slog.LevelWarn
	case domain.KindError:
		level = slog.LevelError
	}
	l.logger.Log(ctx, level, "notification",
		slog.String("title", n.Title),
		slog.String("kind", string(n.Kind)),
		slog.String("detail", n.Detail),
	)
}
