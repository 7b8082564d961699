package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/kv/memory"
	"github.com/utafrali/storefront/internal/notify"
)

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openShopping(t *testing.T, backend kv.Store, n notify.Notifier) *ShoppingStore {
	t.Helper()
	s, err := OpenShoppingStore(context.Background(), backend, n, newTestLogger())
	require.NoError(t, err)
	return s
}

func openComparison(t *testing.T, backend kv.Store, n notify.Notifier) *ComparisonStore {
	t.Helper()
	s, err := OpenComparisonStore(context.Background(), backend, n, newTestLogger())
	require.NoError(t, err)
	return s
}

func product(id string, price string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        "Product " + id,
		Price:       decimal.RequireFromString(price),
		Image:       "/images/products/" + id + ".jpg",
		Description: "desc " + id,
		Rating:      4.5,
		Reviews:     12,
		InStock:     true,
		CategoryID:  "1",
		Tags:        []string{"tag-" + id},
	}
}

// recorder captures every notification in order.
type recorder struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (r *recorder) Notify(_ context.Context, n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.items))
	for i, n := range r.items {
		out[i] = n.Title
	}
	return out
}

func (r *recorder) last(t *testing.T) domain.Notification {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		t.Fatal("no notifications recorded")
	}
	return r.items[len(r.items)-1]
}

type write struct {
	key   string
	value string
}

// spyStore wraps a memory store and records every Set call.
type spyStore struct {
	*memory.Store
	mu     sync.Mutex
	writes []write
	setErr error
	getErr error
}

func newSpyStore() *spyStore {
	return &spyStore{Store: memory.New()}
}

func (s *spyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	return s.Store.Get(ctx, key)
}

func (s *spyStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.writes = append(s.writes, write{key: key, value: value})
	s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	return s.Store.Set(ctx, key, value)
}

func (s *spyStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

var errBackend = errors.New("backend down")
