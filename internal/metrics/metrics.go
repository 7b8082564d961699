package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store names used as label values.
const (
	StoreShopping   = "shopping"
	StoreComparison = "comparison"
)

var (
	// StoreMutations counts state-changing store operations.
	StoreMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_store_mutations_total",
			Help: "Total number of store operations that changed state",
		},
		[]string{"store", "op"},
	)

	// PersistFailures counts write-through failures. The in-memory change is kept.
	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_persist_failures_total",
			Help: "Total number of failed write-through persistence attempts",
		},
		[]string{"store"},
	)

	// HydrationFailures counts collections that could not be read or parsed at start-up.
	HydrationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_hydration_failures_total",
			Help: "Total number of persisted collections that could not be read or parsed during hydration",
		},
		[]string{"store", "key"},
	)

	// ActiveSessions tracks the number of sessions held in memory.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Current number of browsing sessions held in memory",
		},
	)

	// OrdersPlaced counts simulated orders.
	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of simulated orders placed at checkout",
		},
	)
)
