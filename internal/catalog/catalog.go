// Package catalog serves the static, read-only product catalog.
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
)

// Catalog is an immutable in-memory product catalog. Every accessor returns
// copies, so callers cannot modify the catalog.
type Catalog struct {
	products   []domain.Product
	byID       map[string]int
	categories []domain.Category
}

// New builds a catalog from the given categories and products.
func New(categories []domain.Category, products []domain.Product) *Catalog {
	c := &Catalog{
		products:   make([]domain.Product, len(products)),
		byID:       make(map[string]int, len(products)),
		categories: make([]domain.Category, len(categories)),
	}
	for i, p := range products {
		c.products[i] = p.Clone()
		c.byID[p.ID] = i
	}
	copy(c.categories, categories)
	return c
}

// Default returns the built-in storefront catalog.
func Default() *Catalog {
	categories := make([]domain.Category, len(seedCategories))
	for i, sc := range seedCategories {
		categories[i] = domain.Category{
			ID:          sc.id,
			Name:        sc.name,
			Slug:        slug.Generate(sc.name),
			Description: sc.description,
			Image:       sc.image,
		}
	}
	return New(categories, seedProducts)
}

// Get returns the product with the given id.
func (c *Catalog) Get(id string) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return c.products[i].Clone(), nil
}

// Categories returns all categories in display order.
func (c *Catalog) Categories() []domain.Category {
	out := make([]domain.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// CategoryBySlug returns the category with the given URL slug.
func (c *Catalog) CategoryBySlug(s string) (domain.Category, error) {
	for _, cat := range c.categories {
		if cat.Slug == s {
			return cat, nil
		}
	}
	return domain.Category{}, apperrors.NotFound("category", s)
}

// Filter narrows List results. Zero values do not filter.
type Filter struct {
	CategoryID   string
	FeaturedOnly bool
	InStockOnly  bool
	// NewestFirst orders by numeric product id, highest first.
	NewestFirst bool
}

// List returns one page of products matching f.
func (c *Catalog) List(f Filter, params pagination.Params) pagination.Result[domain.Product] {
	matched := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.FeaturedOnly && !p.Featured {
			continue
		}
		if f.InStockOnly && !p.InStock {
			continue
		}
		matched = append(matched, p.Clone())
	}

	if f.NewestFirst {
		sort.SliceStable(matched, func(i, j int) bool {
			return numericID(matched[i].ID) > numericID(matched[j].ID)
		})
	}

	return pagination.Slice(matched, params)
}

// Search returns products whose name, description or any tag contains query,
// case-insensitively. An empty query matches nothing.
func (c *Catalog) Search(query string, params pagination.Params) pagination.Result[domain.Product] {
	q := strings.ToLower(strings.TrimSpace(query))
	matched := make([]domain.Product, 0)
	if q == "" {
		return pagination.Slice(matched, params)
	}

	for _, p := range c.products {
		if matches(p, q) {
			matched = append(matched, p.Clone())
		}
	}
	return pagination.Slice(matched, params)
}

func matches(p domain.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func numericID(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return -1
	}
	return n
}
