package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/metrics"
)

// persistTimeout bounds a single hydration or write-through round trip.
const persistTimeout = 5 * time.Second

var errMalformed = errors.New("malformed persisted state")

// detach returns a context that keeps ctx's values but not its cancellation,
// so a client hanging up mid-request cannot abort a read or write half way.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

// load reads one collection from the persistence adapter into dst. A missing
// key leaves dst untouched. Unparseable data is logged and reported as
// errMalformed; any other error means the backend could not be read and the
// stored state is unknown.
func load(ctx context.Context, store kv.Store, key, storeName string, dst any, logger *slog.Logger) error {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		metrics.HydrationFailures.WithLabelValues(storeName, key).Inc()
		logger.ErrorContext(ctx, "failed to read persisted state",
			slog.String("store", storeName),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil
	}

	if err := kv.DecodeJSON(raw, dst); err != nil {
		metrics.HydrationFailures.WithLabelValues(storeName, key).Inc()
		logger.WarnContext(ctx, "malformed persisted state, starting empty",
			slog.String("store", storeName),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return errMalformed
	}
	return nil
}

// save encodes v and writes it under key. Failures are logged, never returned.
func save(ctx context.Context, store kv.Store, key, storeName string, v any, logger *slog.Logger) {
	raw, err := kv.EncodeJSON(v)
	if err == nil {
		err = store.Set(ctx, key, raw)
	}
	if err != nil {
		metrics.PersistFailures.WithLabelValues(storeName).Inc()
		logger.ErrorContext(ctx, "failed to persist state",
			slog.String("store", storeName),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
