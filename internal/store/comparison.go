package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/notify"
)

// Notification titles emitted by ComparisonStore.
const (
	MsgAlreadyInComparison   = "Already in comparison"
	MsgComparisonFull        = "Comparison list full"
	MsgAddedToComparison     = "Added to comparison"
	MsgRemovedFromComparison = "Removed from comparison"
	MsgComparisonCleared     = "Comparison list cleared"
)

var (
	detailAlreadyInComparison   = "This product is already in your comparison list"
	detailComparisonFull        = fmt.Sprintf("You can compare up to %d products at a time. Remove a product to add a new one.", domain.MaxComparisonItems)
	detailAddedToComparison     = "Product has been added to your comparison list"
	detailRemovedFromComparison = "Product has been removed from your comparison list"
	detailComparisonCleared     = "All products have been removed from your comparison list"
)

// ComparisonStore owns the bounded product comparison list of a session.
type ComparisonStore struct {
	mu          sync.Mutex
	kv          kv.Store
	notifier    notify.Notifier
	logger      *slog.Logger
	items       domain.ComparisonList
	initialized bool
	subs        subscribers[domain.ComparisonList]
}

// NewComparisonStore creates an uninitialized, empty comparison store.
func NewComparisonStore(store kv.Store, notifier notify.Notifier, logger *slog.Logger) *ComparisonStore {
	if notifier == nil {
		notifier = notify.Nop
	}
	return &ComparisonStore{
		kv:       store,
		notifier: notifier,
		logger:   logger,
		items:    domain.ComparisonList{},
	}
}

// OpenComparisonStore creates a comparison store and hydrates it. The store
// is returned even when hydration fails; it then stays uninitialized.
func OpenComparisonStore(ctx context.Context, store kv.Store, notifier notify.Notifier, logger *slog.Logger) (*ComparisonStore, error) {
	s := NewComparisonStore(store, notifier, logger)
	return s, s.Hydrate(ctx)
}

// Hydrate loads the comparison list and marks the store initialized. It
// follows the same rules as ShoppingStore.Hydrate. Stored lists with
// duplicates or more than MaxComparisonItems ids are repaired.
func (s *ComparisonStore) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}

	readCtx, cancel := detach(ctx)
	defer cancel()

	var items domain.ComparisonList
	if err := load(readCtx, s.kv, kv.KeyComparison, metrics.StoreComparison, &items, s.logger); errors.Is(err, errMalformed) {
		items = nil
	} else if err != nil {
		s.mu.Unlock()
		return err
	}
	items, fixed := items.Normalize()
	if fixed {
		s.logger.WarnContext(ctx, "persisted comparison list violated invariants, repaired",
			slog.Int("kept", len(items)),
		)
	}

	s.items = items
	s.initialized = true
	snapshot := s.items.Clone()
	s.mu.Unlock()

	s.subs.publish(snapshot)
	return nil
}

// Initialized reports whether hydration has completed.
func (s *ComparisonStore) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Subscribe registers fn to receive the list after every change.
func (s *ComparisonStore) Subscribe(fn func(domain.ComparisonList)) func() {
	return s.subs.add(fn)
}

// Snapshot returns a copy of the comparison list in insertion order.
func (s *ComparisonStore) Snapshot() domain.ComparisonList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// AddToComparison appends productID. Duplicates and additions beyond
// MaxComparisonItems are refused with an advisory notification.
func (s *ComparisonStore) AddToComparison(ctx context.Context, productID string) {
	s.mu.Lock()
	switch {
	case s.items.Contains(productID):
		s.mu.Unlock()
		s.notifier.Notify(ctx, notify.Success(MsgAlreadyInComparison, detailAlreadyInComparison))
		return
	case s.items.Full():
		s.mu.Unlock()
		s.notifier.Notify(ctx, notify.Warning(MsgComparisonFull, detailComparisonFull))
		return
	}
	s.items = append(s.items, productID)
	s.commit(ctx, "add_to_comparison")

	s.notifier.Notify(ctx, notify.Success(MsgAddedToComparison, detailAddedToComparison))
}

// RemoveFromComparison drops productID if present.
func (s *ComparisonStore) RemoveFromComparison(ctx context.Context, productID string) {
	s.mu.Lock()
	removed := false
	for i, id := range s.items {
		if id == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.commit(ctx, "remove_from_comparison")
	} else {
		s.mu.Unlock()
	}

	s.notifier.Notify(ctx, notify.Success(MsgRemovedFromComparison, detailRemovedFromComparison))
}

// ClearComparison empties the list.
func (s *ComparisonStore) ClearComparison(ctx context.Context) {
	s.mu.Lock()
	if len(s.items) > 0 {
		s.items = domain.ComparisonList{}
		s.commit(ctx, "clear_comparison")
	} else {
		s.mu.Unlock()
	}

	s.notifier.Notify(ctx, notify.Success(MsgComparisonCleared, detailComparisonCleared))
}

// IsInComparison reports whether productID is being compared.
func (s *ComparisonStore) IsInComparison(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Contains(productID)
}

// commit persists the list and publishes it. It must be called with s.mu
// held and releases it.
func (s *ComparisonStore) commit(ctx context.Context, op string) {
	metrics.StoreMutations.WithLabelValues(metrics.StoreComparison, op).Inc()
	if s.initialized {
		writeCtx, cancel := detach(ctx)
		save(writeCtx, s.kv, kv.KeyComparison, metrics.StoreComparison, s.items, s.logger)
		cancel()
	} else {
		s.logger.WarnContext(ctx, "comparison store mutated before hydration, not persisted",
			slog.String("op", op),
		)
	}
	snapshot := s.items.Clone()
	s.mu.Unlock()

	s.subs.publish(snapshot)
}
