package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "maidbook",
			Name:      "booking_created_total",
			Help:      "Count of bookings committed.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "maidbook",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled.",
		},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maidbook",
			Name:      "booking_rejected_total",
			Help:      "Count of booking attempts rejected, by reason.",
		},
		[]string{"reason"},
	)

	writeConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "maidbook",
			Name:      "write_conflicts_total",
			Help:      "Count of optimistic-concurrency conflicts on collection writes.",
		},
	)

	availabilityQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "maidbook",
			Name:      "availability_queries_total",
			Help:      "Count of availability calculations.",
		},
	)

	availabilityDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "maidbook",
			Name:      "availability_duration_seconds",
			Help:      "Time to compute availability including the collection read.",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 2},
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maidbook",
			Name:      "notifications_total",
			Help:      "Count of confirmation notification attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers all collectors (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingCancelled,
			bookingRejected,
			writeConflicts,
			availabilityQueries,
			availabilityDuration,
			notifications,
		)
	})
}

func IncBookingCreated() { bookingCreated.Inc() }

func IncBookingCancelled() { bookingCancelled.Inc() }

func IncBookingRejected(reason string) { bookingRejected.WithLabelValues(reason).Inc() }

func IncWriteConflict() { writeConflicts.Inc() }

func IncAvailabilityQuery() { availabilityQueries.Inc() }

func ObserveAvailabilityDuration(seconds float64) { availabilityDuration.Observe(seconds) }

func IncNotification(outcome string) { notifications.WithLabelValues(outcome).Inc() }
