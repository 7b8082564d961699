package kv_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/kv/memory"
)

type failingStore struct {
	calls int
	err   error
}

func (f *failingStore) Get(context.Context, string) (string, bool, error) {
	f.calls++
	return "", false, f.err
}

func (f *failingStore) Set(context.Context, string, string) error {
	f.calls++
	return f.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
// Namespaced
// ============================================================================

func TestNamespaced_PrefixesKeys(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	ns := kv.NewNamespaced(backend, kv.SessionPrefix("abc"))

	require.NoError(t, ns.Set(ctx, kv.KeyCart, `[]`))

	raw, ok, err := backend.Get(ctx, "session:abc:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, raw)

	value, ok, err := ns.Get(ctx, kv.KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)
}

func TestNamespaced_IsolatesSessions(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	a := kv.NewNamespaced(backend, kv.SessionPrefix("a"))
	b := kv.NewNamespaced(backend, kv.SessionPrefix("b"))

	require.NoError(t, a.Set(ctx, kv.KeyWishlist, `["x"]`))

	_, ok, err := b.Get(ctx, kv.KeyWishlist)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNamespaced_Delete(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	ns := kv.NewNamespaced(backend, "p:")

	require.NoError(t, ns.Set(ctx, kv.KeyComparison, `[]`))
	require.NoError(t, ns.Delete(ctx, kv.KeyComparison))
	assert.Equal(t, 0, backend.Len())
}

// ============================================================================
// Codec
// ============================================================================

func TestDecodeJSON_Malformed(t *testing.T) {
	var ids []string
	err := kv.DecodeJSON("{{nope", &ids)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode value")
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := []string{"p1", "p2", "p3"}
	raw, err := kv.EncodeJSON(in)
	require.NoError(t, err)
	assert.Equal(t, `["p1","p2","p3"]`, raw)

	var out []string
	require.NoError(t, kv.DecodeJSON(raw, &out))
	assert.Equal(t, in, out)
}

// ============================================================================
// Breaker
// ============================================================================

func TestBreaker_PassesThrough(t *testing.T) {
	ctx := context.Background()
	b := kv.NewBreaker(memory.New(), kv.DefaultBreakerConfig("test"), newTestLogger())

	require.NoError(t, b.Set(ctx, "k", "v"))
	value, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	backend := &failingStore{err: errors.New("connection refused")}
	b := kv.NewBreaker(backend, kv.BreakerConfig{Name: "test", MaxFailures: 3, OpenTimeout: time.Minute}, newTestLogger())

	for i := 0; i < 3; i++ {
		err := b.Set(ctx, "k", "v")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Set(ctx, "k", "v")
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.ErrBackendUnavailable)
	assert.Equal(t, 3, backend.calls, "open breaker must not reach the backend")

	_, _, err = b.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrBackendUnavailable)
}

func TestBreaker_MissingKeyIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	b := kv.NewBreaker(memory.New(), kv.BreakerConfig{Name: "test", MaxFailures: 1, OpenTimeout: time.Minute}, newTestLogger())

	for i := 0; i < 3; i++ {
		_, ok, err := b.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_CallerCancellationIsNotAFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"canceled", fmt.Errorf("redis set: %w", context.Canceled)},
		{"deadline", fmt.Errorf("redis set: %w", context.DeadlineExceeded)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &failingStore{err: tt.err}
			b := kv.NewBreaker(backend, kv.BreakerConfig{Name: "test", MaxFailures: 2, OpenTimeout: time.Minute}, newTestLogger())

			for i := 0; i < 5; i++ {
				err := b.Set(context.Background(), "k", "v")
				assert.ErrorIs(t, err, tt.err)
			}
			assert.Equal(t, gobreaker.StateClosed, b.State())

			backend.err = nil
			assert.NoError(t, b.Set(context.Background(), "k", "v"))
			assert.Equal(t, 6, backend.calls)
		})
	}
}

// ============================================================================
// Traced
// ============================================================================

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestTraced_RecordsSpans(t *testing.T) {
	exporter := setupTestTracer(t)
	ctx := context.Background()
	store := kv.NewTraced(memory.New(), "memory")

	require.NoError(t, store.Set(ctx, kv.KeyCart, `[]`))
	_, ok, err := store.Get(ctx, kv.KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.Delete(ctx, kv.KeyCart))

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "kv.set", spans[0].Name)
	assert.Equal(t, "kv.get", spans[1].Name)
	assert.Equal(t, "kv.delete", spans[2].Name)
	for _, s := range spans {
		assert.Equal(t, codes.Unset, s.Status.Code)
	}
}

func TestTraced_MarksErrors(t *testing.T) {
	exporter := setupTestTracer(t)
	store := kv.NewTraced(&failingStore{err: errors.New("connection refused")}, "redis")

	_, _, err := store.Get(context.Background(), kv.KeyWishlist)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "connection refused", spans[0].Status.Description)
}

func TestTraced_DeleteWithoutDeleter(t *testing.T) {
	exporter := setupTestTracer(t)
	store := kv.NewTraced(&failingStore{err: errors.New("unused")}, "custom")

	assert.NoError(t, store.Delete(context.Background(), kv.KeyCart))
	assert.Empty(t, exporter.GetSpans())
}
