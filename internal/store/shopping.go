// Package store holds the shared, persisted shopping state of one browsing
// session: the cart and wishlist (ShoppingStore) and the product comparison
// list (ComparisonStore).
//
// Both stores hydrate once from a kv.Store, write their full state back after
// every change and report user-visible outcomes through a notify.Notifier.
// Write and notification failures are logged and never surface to the
// caller. Only Hydrate reports a backend that could not be read.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/notify"
)

// Notification titles emitted by ShoppingStore.
const (
	MsgAddedToWishlist     = "Added to wishlist"
	MsgRemovedFromWishlist = "Removed from wishlist"
	MsgAddedToCart         = "Added to cart"
	MsgRemovedFromCart     = "Removed from cart"
	MsgCartCleared         = "Cart cleared"
	MsgWishlistCleared     = "Wishlist cleared"
)

// ShoppingStore owns the wishlist and the cart of a session.
type ShoppingStore struct {
	mu          sync.Mutex
	kv          kv.Store
	notifier    notify.Notifier
	logger      *slog.Logger
	state       domain.ShoppingState
	initialized bool
	subs        subscribers[domain.ShoppingState]
}

// NewShoppingStore creates an uninitialized store with empty collections.
// Call Hydrate before handing it to consumers.
func NewShoppingStore(store kv.Store, notifier notify.Notifier, logger *slog.Logger) *ShoppingStore {
	if notifier == nil {
		notifier = notify.Nop
	}
	return &ShoppingStore{
		kv:       store,
		notifier: notifier,
		logger:   logger,
		state:    domain.ShoppingState{Wishlist: domain.Wishlist{}, Cart: domain.Cart{}},
	}
}

// OpenShoppingStore creates a store and hydrates it. The store is returned
// even when hydration fails; it then stays uninitialized.
func OpenShoppingStore(ctx context.Context, store kv.Store, notifier notify.Notifier, logger *slog.Logger) (*ShoppingStore, error) {
	s := NewShoppingStore(store, notifier, logger)
	return s, s.Hydrate(ctx)
}

// Hydrate loads the wishlist and cart from the persistence adapter and marks
// the store initialized. Missing or malformed collections start empty. When
// the backend cannot be read the store stays uninitialized, so nothing is
// written over the unknown stored state, and the error is returned; a later
// call retries. Once initialized, further calls have no effect.
func (s *ShoppingStore) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}

	readCtx, cancel := detach(ctx)
	defer cancel()

	var wishlist domain.Wishlist
	if err := load(readCtx, s.kv, kv.KeyWishlist, metrics.StoreShopping, &wishlist, s.logger); errors.Is(err, errMalformed) {
		wishlist = nil
	} else if err != nil {
		s.mu.Unlock()
		return err
	}
	var cart domain.Cart
	if err := load(readCtx, s.kv, kv.KeyCart, metrics.StoreShopping, &cart, s.logger); errors.Is(err, errMalformed) {
		cart = nil
	} else if err != nil {
		s.mu.Unlock()
		return err
	}

	wishlist, wishlistFixed := wishlist.Normalize()
	cart, cartFixed := cart.Normalize()
	if wishlistFixed || cartFixed {
		s.logger.WarnContext(ctx, "persisted shopping state violated invariants, repaired",
			slog.Bool("wishlist", wishlistFixed),
			slog.Bool("cart", cartFixed),
		)
	}

	s.state = domain.ShoppingState{Wishlist: wishlist.Clone(), Cart: cart.Clone()}
	s.initialized = true
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "shopping state hydrated",
		slog.Int("wishlist", len(snapshot.Wishlist)),
		slog.Int("cart", len(snapshot.Cart)),
	)
	s.subs.publish(snapshot)
	return nil
}

// Initialized reports whether hydration has completed.
func (s *ShoppingStore) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function cancels the subscription.
func (s *ShoppingStore) Subscribe(fn func(domain.ShoppingState)) func() {
	return s.subs.add(fn)
}

// Snapshot returns a deep copy of the current state.
func (s *ShoppingStore) Snapshot() domain.ShoppingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Wishlist returns a copy of the wishlist.
func (s *ShoppingStore) Wishlist() domain.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Wishlist.Clone()
}

// Cart returns a copy of the cart.
func (s *ShoppingStore) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cart.Clone()
}

// AddToWishlist appends p unless a product with the same id is already
// wished for. The success notification is sent either way.
func (s *ShoppingStore) AddToWishlist(ctx context.Context, p domain.Product) {
	s.mutate(ctx, "add_to_wishlist", func(st *domain.ShoppingState) bool {
		if st.Wishlist.IndexOf(p.ID) >= 0 {
			return false
		}
		st.Wishlist = append(st.Wishlist, p.Clone())
		return true
	})
	s.notifier.Notify(ctx, notify.Success(MsgAddedToWishlist, p.Name))
}

// RemoveFromWishlist drops the entry for productID if present.
func (s *ShoppingStore) RemoveFromWishlist(ctx context.Context, productID string) {
	s.mutate(ctx, "remove_from_wishlist", func(st *domain.ShoppingState) bool {
		i := st.Wishlist.IndexOf(productID)
		if i < 0 {
			return false
		}
		st.Wishlist = append(st.Wishlist[:i], st.Wishlist[i+1:]...)
		return true
	})
	s.notifier.Notify(ctx, notify.Success(MsgRemovedFromWishlist, ""))
}

// AddToCart adds quantity units of p. An existing line for the same product
// id is incremented instead of duplicated. quantity is not validated here;
// callers pass a positive value.
func (s *ShoppingStore) AddToCart(ctx context.Context, p domain.Product, quantity int) {
	s.mutate(ctx, "add_to_cart", func(st *domain.ShoppingState) bool {
		if i := st.Cart.IndexOf(p.ID); i >= 0 {
			st.Cart[i].Quantity += quantity
			return true
		}
		st.Cart = append(st.Cart, domain.CartItem{Product: p.Clone(), Quantity: quantity})
		return true
	})
	s.notifier.Notify(ctx, notify.Success(MsgAddedToCart, p.Name))
}

// RemoveFromCart drops the line for productID if present.
func (s *ShoppingStore) RemoveFromCart(ctx context.Context, productID string) {
	s.mutate(ctx, "remove_from_cart", func(st *domain.ShoppingState) bool {
		i := st.Cart.IndexOf(productID)
		if i < 0 {
			return false
		}
		st.Cart = append(st.Cart[:i], st.Cart[i+1:]...)
		return true
	})
	s.notifier.Notify(ctx, notify.Success(MsgRemovedFromCart, ""))
}

// UpdateCartItemQuantity sets the quantity of an existing line. A quantity
// below 1 removes the line. Unknown product ids are ignored.
func (s *ShoppingStore) UpdateCartItemQuantity(ctx context.Context, productID string, quantity int) {
	if quantity < 1 {
		s.RemoveFromCart(ctx, productID)
		return
	}

	s.mutate(ctx, "update_cart_quantity", func(st *domain.ShoppingState) bool {
		i := st.Cart.IndexOf(productID)
		if i < 0 || st.Cart[i].Quantity == quantity {
			return false
		}
		st.Cart[i].Quantity = quantity
		return true
	})
}

// IsInWishlist reports whether productID is wished for.
func (s *ShoppingStore) IsInWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Wishlist.IndexOf(productID) >= 0
}

// IsInCart reports whether productID has a cart line.
func (s *ShoppingStore) IsInCart(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cart.IndexOf(productID) >= 0
}

// CartTotal returns the sum of price × quantity over the cart.
func (s *ShoppingStore) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cart.Total()
}

// ClearCart empties the cart.
func (s *ShoppingStore) ClearCart(ctx context.Context) {
	s.mutate(ctx, "clear_cart", func(st *domain.ShoppingState) bool {
		changed := len(st.Cart) > 0
		st.Cart = domain.Cart{}
		return changed
	})
	s.notifier.Notify(ctx, notify.Success(MsgCartCleared, ""))
}

// TakeCart empties the cart and returns what it held, as one step. Nothing
// is emitted when the cart was already empty.
func (s *ShoppingStore) TakeCart(ctx context.Context) domain.Cart {
	var taken domain.Cart
	s.mutate(ctx, "take_cart", func(st *domain.ShoppingState) bool {
		taken = st.Cart.Clone()
		if len(st.Cart) == 0 {
			return false
		}
		st.Cart = domain.Cart{}
		return true
	})
	if len(taken) > 0 {
		s.notifier.Notify(ctx, notify.Success(MsgCartCleared, ""))
	}
	return taken
}

// ClearWishlist empties the wishlist.
func (s *ShoppingStore) ClearWishlist(ctx context.Context) {
	s.mutate(ctx, "clear_wishlist", func(st *domain.ShoppingState) bool {
		changed := len(st.Wishlist) > 0
		st.Wishlist = domain.Wishlist{}
		return changed
	})
	s.notifier.Notify(ctx, notify.Success(MsgWishlistCleared, ""))
}

// mutate applies fn under the store lock. When fn reports a change the full
// state is written through (once initialized) before the lock is released,
// so persisted snapshots land in mutation order. Subscribers are notified
// after the lock is released.
func (s *ShoppingStore) mutate(ctx context.Context, op string, fn func(*domain.ShoppingState) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	metrics.StoreMutations.WithLabelValues(metrics.StoreShopping, op).Inc()

	if s.initialized {
		writeCtx, cancel := detach(ctx)
		save(writeCtx, s.kv, kv.KeyWishlist, metrics.StoreShopping, s.state.Wishlist, s.logger)
		save(writeCtx, s.kv, kv.KeyCart, metrics.StoreShopping, s.state.Cart, s.logger)
		cancel()
	} else {
		s.logger.WarnContext(ctx, "shopping store mutated before hydration, not persisted",
			slog.String("op", op),
		)
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "shopping state changed",
		slog.String("op", op),
		slog.Int("wishlist", len(snapshot.Wishlist)),
		slog.Int("cart", len(snapshot.Cart)),
	)
	s.subs.publish(snapshot)
}
