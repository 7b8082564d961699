package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// Handler serves the storefront HTTP API.
type Handler struct {
	catalog  *catalog.Catalog
	sessions *session.Manager
	checkout *checkout.Service
	logger   *slog.Logger
}

// NewHandler creates a new storefront HTTP handler.
func NewHandler(cat *catalog.Catalog, sessions *session.Manager, checkoutSvc *checkout.Service, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:  cat,
		sessions: sessions,
		checkout: checkoutSvc,
		logger:   logger,
	}
}

// session resolves the caller's session. On failure the error response has
// already been written.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}
