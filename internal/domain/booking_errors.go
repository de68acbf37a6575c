package domain

import (
	"errors"
	"fmt"
)

// RejectReason is the stable, machine-readable code for a refused
// booking or cancel request. The string value goes out on the wire,
// so existing values must never change.
type RejectReason string

const (
	ReasonRideNotFound        RejectReason = "ride_not_found"
	ReasonSelfBooking         RejectReason = "self_booking"
	ReasonRideUnavailable     RejectReason = "ride_unavailable"
	ReasonInsufficientCredits RejectReason = "insufficient_credits"
	ReasonNoSeatsLeft         RejectReason = "no_seats_left"
	ReasonDuplicateBooking    RejectReason = "duplicate_booking"
	ReasonBookingNotFound     RejectReason = "booking_not_found"
	ReasonBookingNotActive    RejectReason = "booking_not_active"
)

func (r RejectReason) message() string {
	switch r {
	case ReasonRideNotFound:
		return "ride not found"
	case ReasonSelfBooking:
		return "drivers cannot book their own ride"
	case ReasonRideUnavailable:
		return "ride is no longer open for booking"
	case ReasonInsufficientCredits:
		return "insufficient credits"
	case ReasonNoSeatsLeft:
		return "no seats left"
	case ReasonDuplicateBooking:
		return "already booked on this ride"
	case ReasonBookingNotFound:
		return "no booking found for this ride"
	case ReasonBookingNotActive:
		return "booking is not active"
	}
	return string(r)
}

// BookingRejected is returned when a precondition of createBooking fails.
// Exactly one reason is reported: the first precondition that failed.
type BookingRejected struct {
	Reason RejectReason
}

func (e BookingRejected) Error() string {
	return "booking rejected: " + e.Reason.message()
}

// CancelRejected is returned when a booking cancel request is refused.
type CancelRejected struct {
	Reason RejectReason
}

func (e CancelRejected) Error() string {
	return "cancel rejected: " + e.Reason.message()
}

// InvalidRideTransition is returned when a lifecycle action does not
// match the ride's current status, or the caller is not the driver.
type InvalidRideTransition struct {
	RideID int64
	From   string
	Action string
}

func (e InvalidRideTransition) Error() string {
	return fmt.Sprintf("ride %d: cannot %s from status %q", e.RideID, e.Action, e.From)
}

func IsBookingRejected(err error) bool {
	var target BookingRejected
	return errors.As(err, &target)
}

func IsCancelRejected(err error) bool {
	var target CancelRejected
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidRideTransition
	return errors.As(err, &target)
}
