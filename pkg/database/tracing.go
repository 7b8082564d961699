package database

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/utafrali/storefront/pkg/database"

// QueryTracer opens a client span for every statement it is handed and warns
// about statements that take at least its slow threshold.
type QueryTracer struct {
	tracer trace.Tracer
	slow   time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewQueryTracer returns a tracer on the global otel provider. Slow statement
// warnings are off when slow is not positive or logger is nil.
func NewQueryTracer(slow time.Duration, logger *slog.Logger) *QueryTracer {
	if logger == nil {
		slow = 0
	}
	return &QueryTracer{
		tracer: otel.Tracer(tracerName),
		slow:   slow,
		logger: logger,
		now:    time.Now,
	}
}

// Query is a statement in flight.
type Query struct {
	qt      *QueryTracer
	ctx     context.Context
	span    trace.Span
	name    string
	sql     string
	started time.Time
}

// Start opens the span "db.<name>". Run the statement on the returned
// context, then call Finish exactly once.
func (qt *QueryTracer) Start(ctx context.Context, name, sql string) (context.Context, *Query) {
	ctx, span := qt.tracer.Start(ctx, "db."+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", name),
			attribute.String("db.statement", sql),
		),
	)
	return ctx, &Query{qt: qt, ctx: ctx, span: span, name: name, sql: sql, started: qt.now()}
}

// Finish closes the span, marking it failed when err is non-nil.
func (q *Query) Finish(err error) {
	if err != nil {
		q.span.RecordError(err)
		q.span.SetStatus(codes.Error, err.Error())
	}
	q.span.End()

	if q.qt.slow <= 0 {
		return
	}
	took := q.qt.now().Sub(q.started)
	if took < q.qt.slow {
		return
	}
	attrs := []slog.Attr{
		slog.String("operation", q.name),
		slog.String("statement", q.sql),
		slog.Duration("duration", took),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	q.qt.logger.LogAttrs(q.ctx, slog.LevelWarn, "slow query detected", attrs...)
}
