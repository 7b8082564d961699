package http

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the router.
const ServiceName = "storefront"

// RouterConfig tunes the cross-cutting behavior of the router.
type RouterConfig struct {
	CORS middleware.CORSConfig
	// CatalogMaxAge is the Cache-Control max-age of catalog responses, in seconds.
	CatalogMaxAge  int
	RequestTimeout time.Duration
	// RateLimit applies to /api/v1. Zero RPS disables it.
	RateLimit middleware.RateLimitConfig
	// PprofAllowed exposes /debug/pprof to these peer ranges. Empty hides it.
	PprofAllowed []netip.Prefix
}

// DefaultRouterConfig returns permissive CORS, five minute catalog caching and
// a 30 second request timeout.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORS:           middleware.DefaultCORSConfig(),
		CatalogMaxAge:  300,
		RequestTimeout: 30 * time.Second,
	}
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(h *Handler, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger, "/health", "/metrics"))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowed, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, logger))

		r.Route("/catalog", func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/products", h.ListProducts)
			r.Get("/products/{id}", h.GetProduct)
			r.Get("/search", h.SearchProducts)
			r.Get("/categories", h.ListCategories)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession())
			r.Use(middleware.NoStore())

			r.Get("/shopping", h.GetShopping)

			r.Route("/wishlist", func(r chi.Router) {
				r.Post("/", h.AddToWishlist)
				r.Delete("/", h.ClearWishlist)
				r.Delete("/{productID}", h.RemoveFromWishlist)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Delete("/", h.ClearCart)
				r.Post("/items", h.AddToCart)
				r.Put("/items/{productID}", h.UpdateCartItem)
				r.Delete("/items/{productID}", h.RemoveFromCart)
			})

			r.Route("/comparison", func(r chi.Router) {
				r.Get("/", h.GetComparison)
				r.Post("/", h.AddToComparison)
				r.Delete("/", h.ClearComparison)
				r.Delete("/{productID}", h.RemoveFromComparison)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/summary", h.CheckoutSummary)
				r.Post("/orders", h.PlaceOrder)
			})

			r.Get("/notifications", h.DrainNotifications)
			r.Delete("/session", h.EndSession)
		})
	})

	return r
}
