package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.BookingCreated("guesthouse")
	m.BookingCreated("guesthouse")
	m.BookingTransition("confirmed")
	m.OrderCreated("table")
	m.PaymentReceived("nad", 85000)
	m.PaymentReceived("nad", 0)
	m.HoldsExpiredAdd(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsCreated.WithLabelValues("guesthouse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingTransitions.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersCreated.WithLabelValues("table")))
	assert.Equal(t, 85000.0, testutil.ToFloat64(m.PaymentsReceived.WithLabelValues("nad")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HoldsExpired))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookingCreated("hotel")
		m.BookingTransition("cancelled")
		m.OrderCreated("room")
		m.OrderTransition("paid")
		m.PaymentReceived("nad", 100)
		m.HoldsExpiredAdd(1)
	})
}
