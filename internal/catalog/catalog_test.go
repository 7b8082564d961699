package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

func page(n, perPage int) pagination.Params {
	return pagination.Params{Page: n, PerPage: perPage, Offset: (n - 1) * perPage}
}

func TestDefault_Categories(t *testing.T) {
	c := Default()
	cats := c.Categories()
	require.Len(t, cats, 6)

	slugs := make([]string, len(cats))
	for i, cat := range cats {
		slugs[i] = cat.Slug
	}
	assert.Equal(t, []string{
		"electronics", "fashion", "home-kitchen",
		"beauty-personal-care", "sports-outdoors", "books-media",
	}, slugs)
}

func TestCategoryBySlug(t *testing.T) {
	c := Default()

	cat, err := c.CategoryBySlug("home-kitchen")
	require.NoError(t, err)
	assert.Equal(t, "3", cat.ID)
	assert.Equal(t, "Home & Kitchen", cat.Name)

	_, err = c.CategoryBySlug("garden")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGet(t *testing.T) {
	c := Default()

	p, err := c.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Wireless Noise-Cancelling Headphones", p.Name)
	assert.Equal(t, "199.99", p.Price.StringFixed(2))

	_, err = c.Get("999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := Default()

	p, err := c.Get("1")
	require.NoError(t, err)
	p.Name = "changed"
	p.Tags[0] = "changed"

	again, err := c.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Wireless Noise-Cancelling Headphones", again.Name)
	assert.Equal(t, "audio", again.Tags[0])
}

func TestList_CategoryFilter(t *testing.T) {
	c := Default()
	res := c.List(Filter{CategoryID: "2"}, page(1, 50))

	require.Equal(t, 3, res.TotalCount)
	for _, p := range res.Data {
		assert.Equal(t, "2", p.CategoryID)
	}
}

func TestList_FeaturedAndInStock(t *testing.T) {
	c := Default()

	featured := c.List(Filter{FeaturedOnly: true}, page(1, 50))
	for _, p := range featured.Data {
		assert.True(t, p.Featured)
	}
	assert.NotZero(t, featured.TotalCount)

	inStock := c.List(Filter{InStockOnly: true}, page(1, 50))
	for _, p := range inStock.Data {
		assert.True(t, p.InStock)
	}
	assert.Less(t, inStock.TotalCount, len(seedProducts))
}

func TestList_NewestFirst(t *testing.T) {
	c := Default()
	res := c.List(Filter{NewestFirst: true}, page(1, 12))

	require.Len(t, res.Data, 12)
	assert.Equal(t, "18", res.Data[0].ID)
	assert.Equal(t, "7", res.Data[11].ID)
	assert.True(t, res.HasNext)
}

func TestList_Pagination(t *testing.T) {
	c := Default()

	first := c.List(Filter{}, page(1, 5))
	assert.Len(t, first.Data, 5)
	assert.Equal(t, 4, first.TotalPages)
	assert.False(t, first.HasPrev)

	last := c.List(Filter{}, page(4, 5))
	assert.Len(t, last.Data, 3)
	assert.False(t, last.HasNext)

	past := c.List(Filter{}, page(9, 5))
	assert.Empty(t, past.Data)
}

func TestList_ZeroParamsUseDefaults(t *testing.T) {
	res := Default().List(Filter{}, pagination.Params{})
	assert.Equal(t, 20, res.PerPage)
	assert.Len(t, res.Data, len(seedProducts))
}

func TestSearch(t *testing.T) {
	c := Default()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "by name, case-insensitive", query: "YOGA", want: []string{"13"}},
		{name: "by description", query: "hyaluronic", want: []string{"10"}},
		{name: "by tag", query: "vinyl", want: []string{"17"}},
		{name: "across fields", query: "audio", want: []string{"1", "17"}},
		{name: "blank query", query: "   ", want: []string{}},
		{name: "no match", query: "submarine", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Search(tt.query, page(1, 50))
			ids := make([]string, 0, len(res.Data))
			for _, p := range res.Data {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), res.TotalCount)
		})
	}
}
