// Package checkout simulates order placement over a session's cart. No payment
// is ever processed.
package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/notify"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// MsgOrderPlaced is the notification title emitted after a successful order.
const MsgOrderPlaced = "Order placed successfully!"

// Order event constants and the payment method used when none is given.
const (
	TopicOrderPlaced     = "storefront.order.placed"
	AggregateTypeOrder   = "order"
	DefaultPaymentMethod = "credit-card"
)

// PaymentMethods lists the accepted payment method ids.
var PaymentMethods = []string{"credit-card", "paypal", "apple-pay", "google-pay"}

var taxRate = decimal.NewFromFloat(0.1)

// Summary computes the checkout amounts for cart. Shipping is always free and
// tax is 10% of the subtotal, rounded to cents.
func Summary(cart domain.Cart) domain.OrderSummary {
	subtotal := cart.Total()
	tax := subtotal.Mul(taxRate).Round(2)
	return domain.OrderSummary{
		Subtotal:  subtotal,
		Shipping:  decimal.Zero,
		Tax:       tax,
		Total:     subtotal.Add(tax),
		ItemCount: cart.ItemCount(),
	}
}

// Cart is the part of the shopping store the checkout needs. TakeCart must
// empty the cart and return its contents atomically.
type Cart interface {
	TakeCart(ctx context.Context) domain.Cart
}

// OrderPlacedData is the payload of an order.placed event.
type OrderPlacedData struct {
	Number        string `json:"number"`
	SessionID     string `json:"session_id"`
	ItemCount     int    `json:"item_count"`
	Subtotal      string `json:"subtotal"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
	PaymentMethod string `json:"payment_method"`
}

// PlaceOrderInput holds the parameters for placing an order.
type PlaceOrderInput struct {
	SessionID     string
	PaymentMethod string
}

// Service places simulated orders.
type Service struct {
	publisher notify.Publisher
	logger    *slog.Logger
	now       func() time.Time
	number    func() (string, error)
}

// NewService creates a checkout service. publisher may be nil, in which case
// no order events are published.
func NewService(publisher notify.Publisher, logger *slog.Logger) *Service {
	return &Service{
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		number:    orderNumber,
	}
}

// PlaceOrder takes the current cart as an order and notifies the shopper.
// An empty cart is rejected. Items added while the order is placed either
// make it into the order or stay in the cart.
func (s *Service) PlaceOrder(ctx context.Context, cart Cart, notifier notify.Notifier, input PlaceOrderInput) (*domain.Order, error) {
	if input.PaymentMethod == "" {
		input.PaymentMethod = DefaultPaymentMethod
	}
	if !slices.Contains(PaymentMethods, input.PaymentMethod) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported payment method %q", input.PaymentMethod))
	}

	number, err := s.number()
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	items := cart.TakeCart(ctx)
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	order := &domain.Order{
		Number:        number,
		SessionID:     input.SessionID,
		Items:         items,
		Summary:       Summary(items),
		PaymentMethod: input.PaymentMethod,
		PlacedAt:      s.now(),
	}

	if notifier != nil {
		notifier.Notify(ctx, notify.Success(MsgOrderPlaced, order.Number))
	}
	metrics.OrdersPlaced.Inc()

	s.publish(ctx, order)

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_number", order.Number),
		slog.String("session_id", order.SessionID),
		slog.String("total", order.Summary.Total.StringFixed(2)),
	)

	return order, nil
}

func (s *Service) publish(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}

	data := OrderPlacedData{
		Number:        order.Number,
		SessionID:     order.SessionID,
		ItemCount:     order.Summary.ItemCount,
		Subtotal:      order.Summary.Subtotal.StringFixed(2),
		Tax:           order.Summary.Tax.StringFixed(2),
		Total:         order.Summary.Total.StringFixed(2),
		PaymentMethod: order.PaymentMethod,
	}

	event, err := pkgkafka.NewEvent(TopicOrderPlaced, order.Number, AggregateTypeOrder, notify.SourceStorefront, data)
	if err == nil {
		err = s.publisher.Publish(ctx, TopicOrderPlaced, event)
	}
	if err != nil {
		// The order stands even if the event is lost.
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_number", order.Number),
			slog.String("error", err.Error()),
		)
	}
}

var orderNumberLimit = big.NewInt(1_000_000)

func orderNumber() (string, error) {
	n, err := rand.Int(rand.Reader, orderNumberLimit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%06d", n.Int64()), nil
}
