// Package metrics exposes booking outcome counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Booking struct {
	outcomes *prometheus.CounterVec
}

func NewBooking(reg prometheus.Registerer) *Booking {
	b := &Booking{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberbook",
			Subsystem: "booking",
			Name:      "checkout_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(b.outcomes)
	return b
}

func (b *Booking) Created()          { b.outcomes.WithLabelValues("created").Inc() }
func (b *Booking) Conflict()         { b.outcomes.WithLabelValues("conflict").Inc() }
func (b *Booking) ShopClosed()       { b.outcomes.WithLabelValues("shop_closed").Inc() }
func (b *Booking) ValidationFailed() { b.outcomes.WithLabelValues("invalid").Inc() }
