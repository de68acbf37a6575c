package models

import "github.com/shopspring/decimal"

type RideStatus string

const (
	RideStatusPlanned   RideStatus = "planned"
	RideStatusOngoing   RideStatus = "ongoing"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"

	// RideStatusCompletedPending exists in the persisted enum for older
	// rows; no transition produces it anymore (confirmation is tracked
	// per booking, not per ride).
	RideStatusCompletedPending RideStatus = "completed_pending_confirmation"
)

// Ride is a published trip with a fixed seat count and per-seat price.
// Status only moves forward: planned -> {ongoing, cancelled},
// ongoing -> completed. Rides never leave completed or cancelled.
type Ride struct {
	ID              int64
	DriverAccountID int64
	Origin          string
	Destination     string
	DepartsAt       string
	SeatsOffered    int
	PricePerSeat    decimal.Decimal
	Status          RideStatus

	// TotalNetCreditsEarned accumulates the driver's net take across
	// settled bookings on this ride.
	TotalNetCreditsEarned decimal.Decimal
}

// CanTransition reports whether the given lifecycle action is legal
// from the ride's current status.
func (r Ride) CanTransition(action string) bool {
	switch action {
	case "start":
		return r.Status == RideStatusPlanned
	case "finish":
		return r.Status == RideStatusOngoing
	case "cancel":
		return r.Status == RideStatusPlanned
	}
	return false
}
