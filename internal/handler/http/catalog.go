package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
)

// SortNewest orders listings by most recently added product.
const SortNewest = "newest"

// ListProducts handles GET /api/v1/catalog/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result := h.catalog.List(f, pagination.FromRequest(r))
	httputil.WriteData(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/catalog/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// SearchProducts handles GET /api/v1/catalog/search?q=
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(q) > 100 {
		h.writeError(w, r, apperrors.InvalidInput("search query is too long"))
		return
	}

	result := h.catalog.Search(q, pagination.FromRequest(r))
	httputil.WriteData(w, http.StatusOK, result)
}

// ListCategories handles GET /api/v1/catalog/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.Categories())
}

func (h *Handler) parseFilter(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	var f catalog.Filter

	if s := q.Get("category"); s != "" {
		cat, err := h.catalog.CategoryBySlug(s)
		if err != nil {
			return f, err
		}
		f.CategoryID = cat.ID
	}

	var err error
	if f.FeaturedOnly, err = boolParam(q.Get("featured"), "featured"); err != nil {
		return f, err
	}
	if f.InStockOnly, err = boolParam(q.Get("in_stock"), "in_stock"); err != nil {
		return f, err
	}

	switch sort := q.Get("sort"); sort {
	case "":
	case SortNewest:
		f.NewestFirst = true
	default:
		return f, apperrors.InvalidInput("unsupported sort " + strconv.Quote(sort))
	}

	return f, nil
}

// boolParam parses an optional boolean query parameter. Empty means false.
func boolParam(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperrors.InvalidInput(name + " must be a boolean")
	}
	return b, nil
}
