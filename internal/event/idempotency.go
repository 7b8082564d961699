package event

import (
	"context"
	"time"

	"github.com/utafrali/storefront/internal/kv"
)

// SeenPrefix namespaces processed event ids in the key/value store.
const SeenPrefix = "event:"

// KVIdempotencyStore records processed event ids in the same key/value
// backend as shopping state, so deduplication survives restarts when the
// backend is durable.
type KVIdempotencyStore struct {
	store kv.Store
	now   func() time.Time
}

// NewKVIdempotencyStore creates an idempotency store over store.
func NewKVIdempotencyStore(store kv.Store) *KVIdempotencyStore {
	return &KVIdempotencyStore{store: kv.NewNamespaced(store, SeenPrefix), now: time.Now}
}

// Contains reports whether eventID was recorded.
func (s *KVIdempotencyStore) Contains(ctx context.Context, eventID string) (bool, error) {
	_, ok, err := s.store.Get(ctx, eventID)
	return ok, err
}

// Add records eventID with the time it was processed.
func (s *KVIdempotencyStore) Add(ctx context.Context, eventID string) error {
	return s.store.Set(ctx, eventID, s.now().UTC().Format(time.RFC3339))
}
