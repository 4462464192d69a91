package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreChanges counts effective store mutations by op.
	StoreChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_store_changes_total",
			Help: "Total number of cart and wishlist changes by operation",
		},
		[]string{"op"},
	)

	// SessionsActive is the number of sessions held in memory.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_sessions_active",
			Help: "Number of live shopper sessions",
		},
	)

	// SessionsTotal counts session lifecycle events: created, restored, ended,
	// expired and eviction_deferred.
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_sessions_total",
			Help: "Total number of session lifecycle events",
		},
		[]string{"event"},
	)

	// PersistErrors counts snapshot writes that failed.
	PersistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_session_persist_errors_total",
			Help: "Total number of failed session snapshot writes",
		},
	)

	// EventPublishErrors counts storefront events that could not be published.
	EventPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_event_publish_errors_total",
			Help: "Total number of storefront events that failed to publish",
		},
	)

	// CartValue observes the cart total after each cart change.
	CartValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_cart_value",
			Help:    "Cart total after each cart change",
			Buckets: []float64{0, 50, 100, 200, 400, 800, 1600},
		},
	)
)
