package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// --- Request DTOs ---

// ProductRequest is the JSON request body naming a catalog product.
type ProductRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64,printascii"`
}

// AddToCartRequest is the JSON request body for adding to the cart.
// A zero quantity adds one unit.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64,printascii"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
}

// UpdateQuantityRequest is the JSON request body for setting a line quantity.
// Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

// --- Response DTOs ---

// ShoppingResponse is the wishlist and cart of a session with derived totals.
type ShoppingResponse struct {
	Wishlist  domain.Wishlist `json:"wishlist"`
	Cart      domain.Cart     `json:"cart"`
	CartTotal decimal.Decimal `json:"cart_total"`
	ItemCount int             `json:"item_count"`
}

func newShoppingResponse(s *store.ShoppingStore) ShoppingResponse {
	st := s.Snapshot()
	if st.Wishlist == nil {
		st.Wishlist = domain.Wishlist{}
	}
	if st.Cart == nil {
		st.Cart = domain.Cart{}
	}
	return ShoppingResponse{
		Wishlist:  st.Wishlist,
		Cart:      st.Cart,
		CartTotal: st.Cart.Total(),
		ItemCount: st.Cart.ItemCount(),
	}
}

// --- Handlers ---

// GetShopping handles GET /api/v1/shopping
func (h *Handler) GetShopping(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, http.StatusOK, newShoppingResponse(s.Shopping))
}

// AddToWishlist handles POST /api/v1/wishlist
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.catalog.Get(req.ProductID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Shopping.AddToWishlist(r.Context(), p)
	httputil.WriteData(w, http.StatusOK, newShoppingResponse(s.Shopping))
}

// RemoveFromWishlist handles DELETE /api/v1/wishlist/{productID}
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Shopping.RemoveFromWishlist(r.Context(), chi.URLParam(r, "productID"))
	httputil.WriteData(w, http.StatusOK, newShoppingResponse(s.Shopping))
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *Handler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Shopping.ClearWishlist(r.Context())
	httputil.WriteData(w, http.StatusOK, newShoppingResponse(s.Shopping))
}

// AddToCart handles POST /api/v1/cart/items
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.catalog.Get(req.ProductID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Shopping.AddToCart(r.Context(), p, req.Quantity)
	httputil.WriteData(w, http.StatusOK, newShoppingResponse(s.Shopping))
}

// UpdateCartItem handles PUT /api/v1/cart/items/{productID}
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Shopping.UpdateCartItemQuantity(r.Context(), chi.URLParam(r, "productID"), req.Quantity)
	httputil.WriteData(w, http.StatusOK, newShoppingResponse(s.Shopping))
}

// RemoveFromCart handles DELETE /api/v1/cart/items/{productID}
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Shopping.RemoveFromCart(r.Context(), chi.URLParam(r, "productID"))
	httputil.WriteData(w, http.StatusOK, newShoppingResponse(s.Shopping))
}

// ClearCart handles DELETE /api/v1/cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Shopping.ClearCart(r.Context())
	httputil.WriteData(w, http.StatusOK, newShoppingResponse(s.Shopping))
}
