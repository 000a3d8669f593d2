// Package metrics registers the Prometheus instruments for the booking and
// settlement paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TransitionsApplied  *prometheus.CounterVec
	TransitionsRejected prometheus.Counter
	AdminOverrides      prometheus.Counter

	PaymentsRecorded *prometheus.CounterVec

	SettlementsComputed prometheus.Counter
	SettlementFailures  *prometheus.CounterVec
	EscrowReleased      prometheus.Counter
	RefundsIssued       prometheus.Counter

	AggregationDuration prometheus.Histogram
	AnalyticsCacheHits  *prometheus.CounterVec
}

// New registers the instruments on reg. Tests pass a fresh
// prometheus.NewRegistry so repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransitionsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telecare_booking_transitions_total",
			Help: "Booking state transitions applied, by event",
		}, []string{"event"}),

		TransitionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "telecare_booking_transitions_rejected_total",
			Help: "Transition requests rejected as illegal",
		}),

		AdminOverrides: factory.NewCounter(prometheus.CounterOpts{
			Name: "telecare_admin_overrides_total",
			Help: "Operator-forced status changes",
		}),

		PaymentsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telecare_payments_recorded_total",
			Help: "Payment records created or updated, by resulting status",
		}, []string{"status"}),

		SettlementsComputed: factory.NewCounter(prometheus.CounterOpts{
			Name: "telecare_settlements_computed_total",
			Help: "Successful payout computations",
		}),

		SettlementFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telecare_settlement_failures_total",
			Help: "Settlement computations that failed closed, by reason",
		}, []string{"reason"}),

		EscrowReleased: factory.NewCounter(prometheus.CounterOpts{
			Name: "telecare_escrow_released_total",
			Help: "Escrow holds released to providers",
		}),

		RefundsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "telecare_refunds_issued_total",
			Help: "Refunds issued on cancellation",
		}),

		AggregationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "telecare_analytics_aggregation_seconds",
			Help:    "Time spent computing an analytics snapshot",
			Buckets: prometheus.DefBuckets,
		}),

		AnalyticsCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telecare_analytics_cache_total",
			Help: "Analytics cache lookups, by outcome",
		}, []string{"outcome"}),
	}
}
