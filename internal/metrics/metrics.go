package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rideshare_bookings_created_total",
		Help: "Bookings successfully created.",
	})

	BookingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rideshare_bookings_rejected_total",
		Help: "Booking attempts rejected, by reason code.",
	}, []string{"reason"})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rideshare_settlements_total",
		Help: "Completed credit settlements, by entry path.",
	}, []string{"path"})

	RideTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rideshare_ride_transitions_total",
		Help: "Ride lifecycle transitions applied, by action.",
	}, []string{"action"})
)
