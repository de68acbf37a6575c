package models

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed            BookingStatus = "confirmed"
	BookingStatusCancelledByDriver    BookingStatus = "cancelled_by_driver"
	BookingStatusCancelledByPassenger BookingStatus = "cancelled_by_passenger"
	BookingStatusConfirmedAndCredited BookingStatus = "confirmed_and_credited"
	BookingStatusReportedByPassenger  BookingStatus = "reported_by_passenger"
)

// Booking reserves seats for one passenger on one ride. There is at
// most one booking row per (ride, passenger) pair, ever, regardless of
// status. A booking is also the unit of settlement: credits move from
// passenger to driver once per booking, guarded by CreditsTransferred.
type Booking struct {
	ID                 int64
	RideID             int64
	PassengerAccountID int64
	SeatsBooked        int
	Status             BookingStatus

	// ConfirmationToken is opaque and single-use at the business level;
	// the row keeps it after use, CreditsTransferred is the real guard.
	ConfirmationToken string
	TokenExpiresAt    time.Time

	CreditsTransferred bool
	ConfirmedAt        *time.Time
}

// TokenExpired reports whether the confirmation token is stale at the
// given moment. Expiry is checked lazily at use time, not by a timer.
func (b Booking) TokenExpired(now time.Time) bool {
	return now.After(b.TokenExpiresAt)
}
