package http

import (
	"net/http"
	"strconv"

	"github.com/utafrali/storefront/internal/checkout"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// PlaceOrderRequest is the optional JSON body of an order. An empty payment
// method selects the default.
type PlaceOrderRequest struct {
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=credit-card paypal apple-pay google-pay"`
}

// CheckoutSummary handles GET /api/v1/checkout/summary
func (h *Handler) CheckoutSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, http.StatusOK, checkout.Summary(s.Shopping.Cart()))
}

// PlaceOrder handles POST /api/v1/checkout/orders
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if r.ContentLength != 0 {
		if err := validator.DecodeAndValidate(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), s.Shopping, s.Notifier, checkout.PlaceOrderInput{
		SessionID:     s.ID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusCreated, order)
}

// DrainNotifications handles GET /api/v1/notifications. Returned
// notifications are removed from the session inbox.
func (h *Handler) DrainNotifications(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, http.StatusOK, s.Inbox.Drain())
}

// EndSession handles DELETE /api/v1/session?clear=
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	clearState := false
	if v := r.URL.Query().Get("clear"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, r, apperrors.InvalidInput("clear must be a boolean"))
			return
		}
		clearState = b
	}

	if err := h.sessions.End(r.Context(), middleware.SessionIDFromContext(r.Context()), clearState); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
