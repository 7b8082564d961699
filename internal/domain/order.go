package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSummary holds the derived amounts shown at checkout.
type OrderSummary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Order is a simulated order produced by the checkout. It is never charged.
type Order struct {
	Number        string       `json:"number"`
	SessionID     string       `json:"session_id"`
	Items         Cart         `json:"items"`
	Summary       OrderSummary `json:"summary"`
	PaymentMethod string       `json:"payment_method"`
	PlacedAt      time.Time    `json:"placed_at"`
}
