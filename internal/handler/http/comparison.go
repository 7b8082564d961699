package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// ComparisonResponse is the comparison list with its products resolved.
// Ids no longer in the catalog are listed but have no product.
type ComparisonResponse struct {
	ProductIDs domain.ComparisonList `json:"product_ids"`
	Products   []domain.Product      `json:"products"`
	Full       bool                  `json:"full"`
	Max        int                   `json:"max"`
}

func (h *Handler) newComparisonResponse(s *store.ComparisonStore) ComparisonResponse {
	ids := s.Snapshot()
	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, err := h.catalog.Get(id); err == nil {
			products = append(products, p)
		}
	}
	return ComparisonResponse{
		ProductIDs: ids,
		Products:   products,
		Full:       ids.Full(),
		Max:        domain.MaxComparisonItems,
	}
}

// GetComparison handles GET /api/v1/comparison
func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, http.StatusOK, h.newComparisonResponse(s.Comparison))
}

// AddToComparison handles POST /api/v1/comparison
func (h *Handler) AddToComparison(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.catalog.Get(req.ProductID); err != nil {
		h.writeError(w, r, err)
		return
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	// A full list or a duplicate is not an error; the session is notified.
	s.Comparison.AddToComparison(r.Context(), req.ProductID)
	httputil.WriteData(w, http.StatusOK, h.newComparisonResponse(s.Comparison))
}

// RemoveFromComparison handles DELETE /api/v1/comparison/{productID}
func (h *Handler) RemoveFromComparison(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Comparison.RemoveFromComparison(r.Context(), chi.URLParam(r, "productID"))
	httputil.WriteData(w, http.StatusOK, h.newComparisonResponse(s.Comparison))
}

// ClearComparison handles DELETE /api/v1/comparison
func (h *Handler) ClearComparison(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Comparison.ClearComparison(r.Context())
	httputil.WriteData(w, http.StatusOK, h.newComparisonResponse(s.Comparison))
}
