package kv

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/pkg/tracing"
)

const tracerName = "github.com/utafrali/storefront/internal/kv"

// Traced wraps a Store so that every call runs in a client span named after
// the operation and tagged with the backend.
type Traced struct {
	store   Store
	backend string
	tracer  trace.Tracer
}

// NewTraced wraps store. backend is recorded as the kv.backend attribute.
func NewTraced(store Store, backend string) *Traced {
	return &Traced{store: store, backend: backend, tracer: tracing.Tracer(tracerName)}
}

func (t *Traced) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "kv."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("kv.backend", t.backend),
			attribute.String("kv.key", key),
		),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Get reads key inside a kv.get span.
func (t *Traced) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := t.start(ctx, "get", key)
	value, ok, err := t.store.Get(ctx, key)
	span.SetAttributes(attribute.Bool("kv.hit", ok))
	finish(span, err)
	return value, ok, err
}

// Set writes key inside a kv.set span.
func (t *Traced) Set(ctx context.Context, key, value string) error {
	ctx, span := t.start(ctx, "set", key)
	span.SetAttributes(attribute.Int("kv.value_bytes", len(value)))
	err := t.store.Set(ctx, key, value)
	finish(span, err)
	return err
}

// Delete removes key inside a kv.delete span when the wrapped store
// supports deletion.
func (t *Traced) Delete(ctx context.Context, key string) error {
	d, ok := t.store.(Deleter)
	if !ok {
		return nil
	}
	ctx, span := t.start(ctx, "delete", key)
	err := d.Delete(ctx, key)
	finish(span, err)
	return err
}
