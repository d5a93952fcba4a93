// Package metrics exposes booking counters on a private Prometheus
// registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "club_booking"

// Booking counts purchase outcomes.  It satisfies service.Recorder.
type Booking struct {
	registry   *prometheus.Registry
	attempts   *prometheus.CounterVec
	rejections *prometheus.CounterVec
	places     prometheus.Counter
}

// NewBooking registers the booking collectors, plus the Go and process
// collectors, on a fresh registry.
func NewBooking() *Booking {
	reg := prometheus.NewRegistry()
	m := &Booking{
		registry: reg,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Purchase attempts by outcome.",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejections_total",
			Help:      "Failed purchase checks by rule.",
		}, []string{"rule"}),
		places: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "places_booked_total",
			Help:      "Places sold across all competitions.",
		}),
	}
	reg.MustRegister(
		m.attempts,
		m.rejections,
		m.places,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// BookingAccepted records an accepted purchase of places.
func (m *Booking) BookingAccepted(places int) {
	m.attempts.WithLabelValues("accepted").Inc()
	m.places.Add(float64(places))
}

// BookingRejected records a rejected purchase and each rule it failed.
func (m *Booking) BookingRejected(rules []string) {
	m.attempts.WithLabelValues("rejected").Inc()
	for _, r := range rules {
		m.rejections.WithLabelValues(r).Inc()
	}
}

// Registry returns the registry the collectors live on.
func (m *Booking) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Booking) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
