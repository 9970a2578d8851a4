package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout saga outcomes.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	attempts  *prometheus.CounterVec
	conflicts prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_reservation_conflicts_total",
		Help: "Checkouts rolled back after losing a listing reservation race.",
	})
	reg.MustRegister(duration, attempts, conflicts)
	return &CheckoutMetrics{
		duration:  duration,
		attempts:  attempts,
		conflicts: conflicts,
	}
}

// ObserveAttempt records one checkout attempt with its duration.
func (c *CheckoutMetrics) ObserveAttempt(outcome string, duration time.Duration) {
	if c == nil || c.attempts == nil {
		return
	}
	label := normalizeLabel(outcome)
	c.attempts.WithLabelValues(label).Inc()
	c.duration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncConflict increments the reservation conflict counter.
func (c *CheckoutMetrics) IncConflict() {
	if c == nil || c.conflicts == nil {
		return
	}
	c.conflicts.Inc()
}

// StatusSyncMetrics records listing transitions and order item fan-out results.
type StatusSyncMetrics struct {
	transitions         *prometheus.CounterVec
	propagationFailures *prometheus.CounterVec
}

// NewStatusSyncMetrics registers the status sync metrics on the provided registerer.
func NewStatusSyncMetrics(reg prometheus.Registerer) *StatusSyncMetrics {
	if reg == nil {
		return &StatusSyncMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_transitions_total",
		Help: "Listing status transitions by target status.",
	}, []string{"to_status"})
	propagationFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_item_propagation_failures_total",
		Help: "Order item status updates that failed during fan-out.",
	}, []string{"to_status"})
	reg.MustRegister(transitions, propagationFailures)
	return &StatusSyncMetrics{
		transitions:         transitions,
		propagationFailures: propagationFailures,
	}
}

// IncTransition increments the transition counter for the target status.
func (s *StatusSyncMetrics) IncTransition(toStatus string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(toStatus)).Inc()
}

// IncPropagationFailure increments the fan-out failure counter.
func (s *StatusSyncMetrics) IncPropagationFailure(toStatus string) {
	if s == nil || s.propagationFailures == nil {
		return
	}
	s.propagationFailures.WithLabelValues(normalizeLabel(toStatus)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
