package domain

import "github.com/shopspring/decimal"

// Product is a read-only catalog entry. JSON field names match the persisted
// browser format so previously stored carts and wishlists hydrate unchanged.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Image           string          `json:"image"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription"`
	Rating          float64         `json:"rating"`
	Reviews         int             `json:"reviews"`
	InStock         bool            `json:"inStock"`
	CategoryID      string          `json:"categoryId"`
	Featured        bool            `json:"featured"`
	Tags            []string        `json:"tags"`
}

// Clone returns a copy of the product that shares no slices with p.
func (p Product) Clone() Product {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}

// Category groups catalog products.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
