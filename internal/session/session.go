// Package session owns the per-session shopping and comparison stores. It is
// the single place where a session's state is constructed and torn down.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// MaxIDLength bounds the accepted session id length.
const MaxIDLength = 128

// Session bundles the state of one browsing session.
type Session struct {
	ID         string
	Shopping   *store.ShoppingStore
	Comparison *store.ComparisonStore
	// Inbox buffers notifications until the client fetches them.
	Inbox *notify.Inbox
	// Notifier fans out to the inbox, the log and, when enabled, Kafka.
	Notifier notify.Notifier

	lastSeen time.Time
}

// Config controls session lifetime.
type Config struct {
	// IdleTTL is how long an unused session stays in memory. Zero disables eviction.
	IdleTTL   time.Duration
	InboxSize int
}

// Manager creates sessions on first use and evicts idle ones. Evicting a
// session drops only its in-memory stores; persisted state is kept and is
// hydrated again on the next Get.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	kv        kv.Store
	publisher notify.Publisher
	cfg       Config
	logger    *slog.Logger
	nowFunc   func() time.Time
}

// NewManager creates a session manager over kvStore. publisher may be nil to
// disable Kafka notifications.
func NewManager(kvStore kv.Store, publisher notify.Publisher, cfg Config, logger *slog.Logger) *Manager {
	if cfg.InboxSize < 1 {
		cfg.InboxSize = notify.DefaultInboxSize
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		kv:        kvStore,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// Get returns the session with the given id, creating and hydrating it from
// the KV store on first use.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	if s := m.touch(id); s != nil {
		return s, nil
	}

	// Hydrated outside the lock; a concurrent Get may win the insert. A
	// session whose stored state could not be read is not kept, so the next
	// request hydrates again instead of writing over that state.
	fresh, err := m.open(ctx, id)
	if err != nil {
		m.logger.ErrorContext(ctx, "session hydration failed",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Unavailable("session state", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.lastSeen = m.nowFunc()
		return s, nil
	}
	fresh.lastSeen = m.nowFunc()
	m.sessions[id] = fresh
	metrics.ActiveSessions.Inc()

	m.logger.DebugContext(ctx, "session opened", slog.String("session_id", id))
	return fresh, nil
}

// End tears down a session. With clear set, its wishlist, cart and comparison
// list are emptied in the KV store as well, as on logout.
func (m *Manager) End(ctx context.Context, id string, clear bool) error {
	if err := validateID(id); err != nil {
		return err
	}

	if clear {
		s, err := m.Get(ctx, id)
		if err != nil {
			return err
		}
		s.Shopping.ClearCart(ctx)
		s.Shopping.ClearWishlist(ctx)
		s.Comparison.ClearComparison(ctx)
	}

	m.mu.Lock()
	_, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		metrics.ActiveSessions.Dec()
	}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session ended",
		slog.String("session_id", id),
		slog.Bool("cleared", clear),
	)
	return nil
}

// Evict drops sessions idle for longer than the configured TTL and returns
// how many were removed.
func (m *Manager) Evict() int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	evicted := 0
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.cfg.IdleTTL {
			delete(m.sessions, id)
			evicted++
		}
	}
	metrics.ActiveSessions.Sub(float64(evicted))
	return evicted
}

// Run evicts idle sessions periodically until ctx is canceled.
func (m *Manager) Run(ctx context.Context) {
	if m.cfg.IdleTTL <= 0 {
		return
	}

	interval := m.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Evict(); n > 0 {
				m.logger.Info("idle sessions evicted", slog.Int("evicted", n))
			}
		}
	}
}

// Len returns the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) touch(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	s.lastSeen = m.nowFunc()
	return s
}

func (m *Manager) open(ctx context.Context, id string) (*Session, error) {
	logger := m.logger.With(slog.String("session_id", id))
	scoped := kv.NewNamespaced(m.kv, kv.SessionPrefix(id))
	inbox := notify.NewInbox(m.cfg.InboxSize)

	sinks := []notify.Notifier{inbox, notify.NewLog(logger)}
	if m.publisher != nil {
		sinks = append(sinks, notify.NewKafka(m.publisher, id, logger))
	}
	notifier := notify.NewMulti(logger, sinks...)

	shopping, err := store.OpenShoppingStore(ctx, scoped, notifier, logger)
	if err != nil {
		return nil, err
	}
	comparison, err := store.OpenComparisonStore(ctx, scoped, notifier, logger)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:         id,
		Shopping:   shopping,
		Comparison: comparison,
		Inbox:      inbox,
		Notifier:   notifier,
	}, nil
}

func validateID(id string) error {
	if id == "" {
		return apperrors.InvalidInput("session id is required")
	}
	if len(id) > MaxIDLength {
		return apperrors.InvalidInput("session id is too long")
	}
	return nil
}
