// Package metrics holds the business counters exported on /metrics next to
// the HTTP metrics from fiberprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	BookingsCreated    *prometheus.CounterVec
	BookingTransitions *prometheus.CounterVec
	OrdersCreated      *prometheus.CounterVec
	OrderTransitions   *prometheus.CounterVec
	PaymentsReceived   *prometheus.CounterVec
	HoldsExpired       prometheus.Counter
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buffr",
			Name:      "bookings_created_total",
			Help:      "Bookings created, by property type.",
		}, []string{"property_type"}),
		BookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buffr",
			Name:      "booking_transitions_total",
			Help:      "Booking status changes, by target status.",
		}, []string{"status"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buffr",
			Name:      "orders_created_total",
			Help:      "Restaurant orders created.",
		}, []string{"channel"}),
		OrderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buffr",
			Name:      "order_transitions_total",
			Help:      "Order status changes, by target status.",
		}, []string{"status"}),
		PaymentsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buffr",
			Name:      "payments_received_cents_total",
			Help:      "Settled Stripe payments in minor units, by currency.",
		}, []string{"currency"}),
		HoldsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "buffr",
			Name:      "booking_holds_expired_total",
			Help:      "Pending bookings expired by the sweeper.",
		}),
	}
	reg.MustRegister(m.BookingsCreated, m.BookingTransitions, m.OrdersCreated,
		m.OrderTransitions, m.PaymentsReceived, m.HoldsExpired)
	return m
}

func (m *Metrics) BookingCreated(propertyType string) {
	if m == nil {
		return
	}
	m.BookingsCreated.WithLabelValues(propertyType).Inc()
}

func (m *Metrics) BookingTransition(status string) {
	if m == nil {
		return
	}
	m.BookingTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) OrderCreated(channel string) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(channel).Inc()
}

func (m *Metrics) OrderTransition(status string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) PaymentReceived(currency string, cents int64) {
	if m == nil || cents <= 0 {
		return
	}
	m.PaymentsReceived.WithLabelValues(currency).Add(float64(cents))
}

func (m *Metrics) HoldsExpiredAdd(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.HoldsExpired.Add(float64(n))
}
