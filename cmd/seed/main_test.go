package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/kv/memory"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/health"
)

func newTestStorefront(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	prev := log.Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(prev) })

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	sessions := session.NewManager(memory.New(), nil, session.Config{}, logger)
	h := handler.NewHandler(catalog.Default(), sessions, checkout.NewService(nil, logger), logger)
	srv := httptest.NewServer(handler.NewRouter(h, health.NewHandler(0), handler.DefaultRouterConfig(), logger))
	t.Cleanup(srv.Close)
	return srv, sessions
}

func TestSeed(t *testing.T) {
	srv, sessions := newTestStorefront(t)
	s := &seeder{baseURL: srv.URL, sessionID: "demo", client: srv.Client()}

	sum, err := s.seed(context.Background(), plan{Wishlist: 3, Cart: 2, Comparison: 5})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "4"}, sum.Wishlisted)
	assert.Equal(t, []string{"1", "2"}, sum.Carted)
	assert.Len(t, sum.Compared, 5)

	sess, err := sessions.Get(context.Background(), "demo")
	require.NoError(t, err)
	cart := sess.Shopping.Cart()
	require.Len(t, cart, 2)
	assert.Equal(t, 1, cart[0].Quantity)
	assert.Equal(t, 2, cart[1].Quantity)
	assert.Len(t, sess.Comparison.Snapshot(), 4)
	assert.Equal(t, 0, sess.Inbox.Len())
}

func TestSeed_ReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"code":"SERVICE_UNAVAILABLE","message":"kv is temporarily unavailable"}}`)
	}))
	defer srv.Close()

	s := &seeder{baseURL: srv.URL, sessionID: "demo", client: srv.Client()}
	_, err := s.seed(context.Background(), plan{Wishlist: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVICE_UNAVAILABLE")
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SEED_TEST_INT", "7")
	assert.Equal(t, 7, getEnvInt("SEED_TEST_INT", 1))

	t.Setenv("SEED_TEST_INT", "-2")
	assert.Equal(t, 1, getEnvInt("SEED_TEST_INT", 1))

	t.Setenv("SEED_TEST_INT", "lots")
	assert.Equal(t, 1, getEnvInt("SEED_TEST_INT", 1))
}
