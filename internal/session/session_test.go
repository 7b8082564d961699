package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/kv/memory"
	kvredis "github.com/utafrali/storefront/internal/kv/redis"
	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(backend kv.Store, ttl time.Duration) (*Manager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(backend, nil, Config{IdleTTL: ttl}, newTestLogger())
	m.nowFunc = clock.Now
	return m, clock
}

func product(id string) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(10)}
}

// ============================================================================
// Get
// ============================================================================

func TestGet_CreatesOnceAndReuses(t *testing.T) {
	m, _ := newTestManager(memory.New(), time.Minute)
	ctx := context.Background()

	first, err := m.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, first.Shopping.Initialized())
	assert.True(t, first.Comparison.Initialized())

	second, err := m.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Len())
}

func TestGet_InvalidID(t *testing.T) {
	m, _ := newTestManager(memory.New(), time.Minute)

	_, err := m.Get(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	long := make([]byte, MaxIDLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = m.Get(context.Background(), string(long))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGet_SessionsAreIsolated(t *testing.T) {
	backend := memory.New()
	m, _ := newTestManager(backend, time.Minute)
	ctx := context.Background()

	a, err := m.Get(ctx, "a")
	require.NoError(t, err)
	b, err := m.Get(ctx, "b")
	require.NoError(t, err)

	a.Shopping.AddToCart(ctx, product("1"), 1)
	a.Comparison.AddToComparison(ctx, "1")

	assert.Len(t, a.Shopping.Cart(), 1)
	assert.Empty(t, b.Shopping.Cart())
	assert.Empty(t, b.Comparison.Snapshot())

	_, ok, err := backend.Get(ctx, "session:a:"+kv.KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = backend.Get(ctx, "session:b:"+kv.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_NotificationsReachInbox(t *testing.T) {
	m, _ := newTestManager(memory.New(), time.Minute)
	ctx := context.Background()

	s, err := m.Get(ctx, "abc")
	require.NoError(t, err)
	s.Shopping.AddToWishlist(ctx, product("1"))

	notes := s.Inbox.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, store.MsgAddedToWishlist, notes[0].Title)
}

func TestGet_PublishesToKafkaWhenEnabled(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, notify.TopicNotificationEmitted, mock.MatchedBy(func(e *pkgkafka.Event) bool {
		return e.AggregateID == "abc"
	})).Return(nil).Once()

	m := NewManager(memory.New(), pub, Config{}, newTestLogger())
	ctx := context.Background()

	s, err := m.Get(ctx, "abc")
	require.NoError(t, err)
	s.Comparison.AddToComparison(ctx, "7")

	pub.AssertExpectations(t)
}

func TestGet_ConcurrentFirstUse(t *testing.T) {
	m, _ := newTestManager(memory.New(), time.Minute)
	ctx := context.Background()

	const workers = 16
	got := make([]*Session, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Get(ctx, "shared")
			if err == nil {
				got[i] = s
			}
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, m.Len())
}

// flakyStore fails the first failReads reads.
type flakyStore struct {
	*memory.Store
	mu        sync.Mutex
	failReads int
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	if f.failReads > 0 {
		f.failReads--
		f.mu.Unlock()
		return "", false, errors.New("connection reset")
	}
	f.mu.Unlock()
	return f.Store.Get(ctx, key)
}

func TestGet_CanceledFirstRequestKeepsSavedCart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, mr.Set("session:s1:cart", `[{"id":"p1","name":"Mouse","price":20,"quantity":3}]`))

	m, _ := newTestManager(kvredis.NewStore(client, time.Hour), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, s.Shopping.Cart(), 1)
	assert.Equal(t, 3, s.Shopping.Cart()[0].Quantity)

	s.Shopping.AddToCart(ctx, product("p2"), 1)

	stored, err := mr.Get("session:s1:cart")
	require.NoError(t, err)
	assert.Contains(t, stored, `"id":"p1"`)
	assert.Contains(t, stored, `"id":"p2"`)
}

func TestGet_ReadFailureIsNotCached(t *testing.T) {
	backend := &flakyStore{Store: memory.New(), failReads: 1}
	require.NoError(t, backend.Store.Set(context.Background(), kv.SessionPrefix("s1")+kv.KeyCart, `[{"id":"p1","price":20,"quantity":3}]`))
	m, _ := newTestManager(backend, time.Minute)
	ctx := context.Background()

	s, err := m.Get(ctx, "s1")

	assert.Nil(t, s)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Zero(t, m.Len())

	s, err = m.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, s.Shopping.Cart(), 1)
	assert.Equal(t, 3, s.Shopping.Cart()[0].Quantity)
	assert.Equal(t, 1, m.Len())
}

// ============================================================================
// End and eviction
// ============================================================================

func TestEnd_KeepsStateWithoutClear(t *testing.T) {
	m, _ := newTestManager(memory.New(), time.Minute)
	ctx := context.Background()

	s, err := m.Get(ctx, "abc")
	require.NoError(t, err)
	s.Shopping.AddToCart(ctx, product("1"), 2)

	require.NoError(t, m.End(ctx, "abc", false))
	assert.Zero(t, m.Len())

	again, err := m.Get(ctx, "abc")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	require.Len(t, again.Shopping.Cart(), 1)
	assert.Equal(t, 2, again.Shopping.Cart()[0].Quantity)
}

func TestEnd_ClearEmptiesPersistedState(t *testing.T) {
	m, _ := newTestManager(memory.New(), time.Minute)
	ctx := context.Background()

	s, err := m.Get(ctx, "abc")
	require.NoError(t, err)
	s.Shopping.AddToCart(ctx, product("1"), 1)
	s.Shopping.AddToWishlist(ctx, product("2"))
	s.Comparison.AddToComparison(ctx, "3")

	require.NoError(t, m.End(ctx, "abc", true))

	again, err := m.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, again.Shopping.Cart())
	assert.Empty(t, again.Shopping.Wishlist())
	assert.Empty(t, again.Comparison.Snapshot())
}

func TestEnd_UnknownSessionIsNoop(t *testing.T) {
	m, _ := newTestManager(memory.New(), time.Minute)
	assert.NoError(t, m.End(context.Background(), "ghost", false))
	assert.Zero(t, m.Len())
}

func TestEvict_RemovesOnlyIdleSessions(t *testing.T) {
	m, clock := newTestManager(memory.New(), 10*time.Minute)
	ctx := context.Background()

	_, err := m.Get(ctx, "old")
	require.NoError(t, err)
	clock.Advance(8 * time.Minute)
	_, err = m.Get(ctx, "fresh")
	require.NoError(t, err)
	clock.Advance(3 * time.Minute)

	assert.Equal(t, 1, m.Evict())
	assert.Equal(t, 1, m.Len())

	_, err = m.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestEvict_DisabledWithoutTTL(t *testing.T) {
	m, clock := newTestManager(memory.New(), 0)
	_, err := m.Get(context.Background(), "abc")
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	assert.Zero(t, m.Evict())
	assert.Equal(t, 1, m.Len())
}

func TestRun_StopsOnCancel(t *testing.T) {
	m, _ := newTestManager(memory.New(), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
