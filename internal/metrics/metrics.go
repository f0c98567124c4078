// Package metrics exposes Prometheus counters for the coin economy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CoinsDistributed counts coins credited through event wins.
	CoinsDistributed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campuscoins",
		Name:      "coins_distributed_total",
		Help:      "Total coins credited to students through event wins.",
	})

	// WinnerDeclarations counts successful declare-winners calls.
	WinnerDeclarations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campuscoins",
		Name:      "winner_declarations_total",
		Help:      "Total events whose winners have been declared.",
	})

	// ManualAdjustments counts admin coin adjustments by type.
	ManualAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campuscoins",
		Name:      "manual_adjustments_total",
		Help:      "Total manual coin adjustments applied by admins.",
	}, []string{"type"})

	// Registrations counts successful event registrations.
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campuscoins",
		Name:      "event_registrations_total",
		Help:      "Total successful event registrations.",
	})
)
