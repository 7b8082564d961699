package domain

import "github.com/shopspring/decimal"

// CartItem is a product in the cart together with its quantity.
// The product fields are flattened into the same JSON object.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price × quantity for the item.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the ordered list of cart items. At most one item exists per product id.
type Cart []CartItem

// Total calculates the sum of all line totals.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c {
		count += item.Quantity
	}
	return count
}

// IndexOf returns the index of the item for productID, or -1.
func (c Cart) IndexOf(productID string) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the cart. A nil cart clones to an empty one.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for i, item := range c {
		out[i] = CartItem{Product: item.Product.Clone(), Quantity: item.Quantity}
	}
	return out
}

// Normalize restores the cart invariants on externally sourced data: lines
// for the same product id are merged into the first one, and lines without an
// id or with a quantity below 1 are dropped. It reports whether anything
// changed.
func (c Cart) Normalize() (Cart, bool) {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		if i := out.IndexOf(item.ID); i >= 0 {
			out[i].Quantity += item.Quantity
			continue
		}
		out = append(out, item)
	}
	return out, len(out) != len(c)
}

// Wishlist is the ordered set of wished-for products, keyed by product id.
type Wishlist []Product

// IndexOf returns the index of the entry for productID, or -1.
func (w Wishlist) IndexOf(productID string) int {
	for i := range w {
		if w[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the wishlist.
func (w Wishlist) Clone() Wishlist {
	out := make(Wishlist, len(w))
	for i, p := range w {
		out[i] = p.Clone()
	}
	return out
}

// Normalize drops entries without an id and repeated product ids, keeping
// the first occurrence. It reports whether anything changed.
func (w Wishlist) Normalize() (Wishlist, bool) {
	out := make(Wishlist, 0, len(w))
	for _, p := range w {
		if p.ID == "" || out.IndexOf(p.ID) >= 0 {
			continue
		}
		out = append(out, p)
	}
	return out, len(out) != len(w)
}

// ShoppingState is a point-in-time snapshot of the shopping store.
type ShoppingState struct {
	Wishlist Wishlist `json:"wishlist"`
	Cart     Cart     `json:"cart"`
}

// Clone returns a deep copy of the state.
func (s ShoppingState) Clone() ShoppingState {
	return ShoppingState{Wishlist: s.Wishlist.Clone(), Cart: s.Cart.Clone()}
}
