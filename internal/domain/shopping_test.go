package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ============================================================================
// Cart.Total Tests
// ============================================================================

func TestTotal_MultipleItems(t *testing.T) {
	c := Cart{
		{Product: Product{ID: "a", Price: price("10")}, Quantity: 2},
		{Product: Product{ID: "b", Price: price("5")}, Quantity: 1},
	}
	assert.Equal(t, "25", c.Total().String())
}

func TestTotal_Fractional(t *testing.T) {
	c := Cart{
		{Product: Product{Price: price("19.99")}, Quantity: 3},
		{Product: Product{Price: price("0.01")}, Quantity: 1},
	}
	assert.Equal(t, "59.98", c.Total().String())
}

func TestTotal_EmptyCart(t *testing.T) {
	assert.True(t, Cart{}.Total().IsZero())
	assert.True(t, Cart(nil).Total().IsZero())
}

// ============================================================================
// Cart.ItemCount / IndexOf Tests
// ============================================================================

func TestItemCount(t *testing.T) {
	c := Cart{{Quantity: 2}, {Quantity: 3}, {Quantity: 1}}
	assert.Equal(t, 6, c.ItemCount())
}

func TestIndexOf(t *testing.T) {
	c := Cart{
		{Product: Product{ID: "prod-1"}},
		{Product: Product{ID: "prod-2"}},
	}
	assert.Equal(t, 0, c.IndexOf("prod-1"))
	assert.Equal(t, 1, c.IndexOf("prod-2"))
	assert.Equal(t, -1, c.IndexOf("prod-999"))

	w := Wishlist{{ID: "w1"}}
	assert.Equal(t, 0, w.IndexOf("w1"))
	assert.Equal(t, -1, w.IndexOf("w2"))
}

// ============================================================================
// Clone Tests
// ============================================================================

func TestClone_NilBecomesEmpty(t *testing.T) {
	assert.NotNil(t, Cart(nil).Clone())
	assert.NotNil(t, Wishlist(nil).Clone())
	assert.NotNil(t, ComparisonList(nil).Clone())
}

func TestClone_DoesNotShareTags(t *testing.T) {
	w := Wishlist{{ID: "w1", Tags: []string{"a"}}}
	cp := w.Clone()
	cp[0].Tags[0] = "b"
	assert.Equal(t, "a", w[0].Tags[0])
}

// ============================================================================
// ComparisonList Tests
// ============================================================================

func TestComparisonList_ContainsAndFull(t *testing.T) {
	l := ComparisonList{"p1", "p2", "p3"}
	assert.True(t, l.Contains("p2"))
	assert.False(t, l.Contains("p4"))
	assert.False(t, l.Full())

	l = append(l, "p4")
	assert.True(t, l.Full())
}

// ============================================================================
// Normalize Tests
// ============================================================================

func TestCartNormalize(t *testing.T) {
	cart := Cart{
		{Product: Product{ID: "p1", Price: price("10")}, Quantity: 2},
		{Product: Product{ID: "p2", Price: price("5")}, Quantity: 0},
		{Product: Product{ID: "", Price: price("1")}, Quantity: 1},
		{Product: Product{ID: "p1", Price: price("10")}, Quantity: 3},
		{Product: Product{ID: "p3", Price: price("1")}, Quantity: -4},
	}

	got, changed := cart.Normalize()

	assert.True(t, changed)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, 5, got[0].Quantity)
}

func TestCartNormalize_ValidCartUnchanged(t *testing.T) {
	cart := Cart{
		{Product: Product{ID: "p1"}, Quantity: 1},
		{Product: Product{ID: "p2"}, Quantity: 7},
	}

	got, changed := cart.Normalize()

	assert.False(t, changed)
	assert.Equal(t, cart, got)
}

func TestWishlistNormalize(t *testing.T) {
	got, changed := Wishlist{{ID: "w1", Name: "first"}, {ID: "w2"}, {ID: "w1", Name: "second"}, {}}.Normalize()

	assert.True(t, changed)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "w2", got[1].ID)
}

func TestComparisonListNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      ComparisonList
		want    ComparisonList
		changed bool
	}{
		{"valid", ComparisonList{"a", "b"}, ComparisonList{"a", "b"}, false},
		{"duplicates", ComparisonList{"a", "a", "b"}, ComparisonList{"a", "b"}, true},
		{"over capacity", ComparisonList{"a", "b", "c", "d", "e", "f"}, ComparisonList{"a", "b", "c", "d"}, true},
		{"empty ids", ComparisonList{"", "a"}, ComparisonList{"a"}, true},
		{"nil", nil, ComparisonList{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := tt.in.Normalize()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

// ============================================================================
// JSON layout
// ============================================================================

func TestCartItem_JSONIsFlat(t *testing.T) {
	item := CartItem{
		Product: Product{
			ID:              "p1",
			Name:            "Wireless Mouse",
			Price:           price("20"),
			LongDescription: "long",
			InStock:         true,
			CategoryID:      "1",
			Tags:            []string{"electronics"},
		},
		Quantity: 3,
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "p1", raw["id"])
	assert.Equal(t, float64(3), raw["quantity"])
	assert.Equal(t, "long", raw["longDescription"])
	assert.Equal(t, true, raw["inStock"])
	assert.Equal(t, "1", raw["categoryId"])
	assert.NotContains(t, raw, "Product")
}

func TestCartItem_DecodesNumericPrice(t *testing.T) {
	var c Cart
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"p1","price":20.5,"quantity":2}]`), &c))
	require.Len(t, c, 1)
	assert.Equal(t, "41", c.Total().String())
}
