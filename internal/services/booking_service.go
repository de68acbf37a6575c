package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rideshare/internal/analytics"
	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
	"rideshare/internal/metrics"
	"rideshare/internal/repositories"
	"rideshare/internal/utils"

	"github.com/google/uuid"
)

const defaultConfirmTTL = 72 * time.Hour

// BookingService creates and cancels seat reservations. Every mutation
// runs inside one ledger transaction with the ride row locked first, so
// concurrent bookings on the same ride serialize and the seat count can
// never be oversold.
type BookingService struct {
	AccountRepo repositories.AccountRepo
	RideRepo    repositories.RideRepo
	BookingRepo repositories.BookingRepo
	DB          *sql.DB
	Analytics   *analytics.Log
	ConfirmTTL  time.Duration
	RequestID   string
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) accounts() repositories.AccountRepo {
	if s.AccountRepo.DB != nil {
		return s.AccountRepo
	}
	return repositories.AccountRepo{DB: s.db()}
}

func (s BookingService) rides() repositories.RideRepo {
	if s.RideRepo.DB != nil {
		return s.RideRepo
	}
	return repositories.RideRepo{DB: s.db()}
}

func (s BookingService) bookings() repositories.BookingRepo {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepo{DB: s.db()}
}

func (s BookingService) confirmTTL() time.Duration {
	if s.ConfirmTTL > 0 {
		return s.ConfirmTTL
	}
	return defaultConfirmTTL
}

// CreateBooking reserves one seat for the passenger and debits the
// price from their balance. Preconditions are checked in a fixed order
// inside one transaction; the first failure wins and nothing is
// committed.
func (s BookingService) CreateBooking(ctx context.Context, rideID, passengerAccountID int64) error {
	if rideID <= 0 {
		return domain.ValidationError{Field: "ride_id", Msg: "invalid id"}
	}
	if passengerAccountID <= 0 {
		return domain.ValidationError{Field: "passenger_account_id", Msg: "invalid id"}
	}

	var created models.Booking
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		ride, err := s.rides().LockByID(tx, rideID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BookingRejected{Reason: domain.ReasonRideNotFound}
		}
		if err != nil {
			return domain.InternalError{Err: err}
		}

		if ride.DriverAccountID == passengerAccountID {
			return domain.BookingRejected{Reason: domain.ReasonSelfBooking}
		}
		if ride.Status != models.RideStatusPlanned {
			return domain.BookingRejected{Reason: domain.ReasonRideUnavailable}
		}

		passenger, err := s.accounts().LockByID(tx, passengerAccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "account"}
		}
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if passenger.Balance.LessThan(ride.PricePerSeat) {
			return domain.BookingRejected{Reason: domain.ReasonInsufficientCredits}
		}

		seats, err := s.bookings().CountConfirmedSeats(tx, rideID)
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if seats+1 > ride.SeatsOffered {
			return domain.BookingRejected{Reason: domain.ReasonNoSeatsLeft}
		}

		exists, err := s.bookings().ExistsForPassenger(tx, rideID, passengerAccountID)
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if exists {
			return domain.BookingRejected{Reason: domain.ReasonDuplicateBooking}
		}

		booking := models.Booking{
			RideID:             rideID,
			PassengerAccountID: passengerAccountID,
			SeatsBooked:        1,
			Status:             models.BookingStatusConfirmed,
			ConfirmationToken:  uuid.NewString(),
			TokenExpiresAt:     time.Now().Add(s.confirmTTL()),
		}
		id, err := s.bookings().Insert(tx, booking)
		if err != nil {
			return domain.InternalError{Err: err}
		}
		booking.ID = id

		if err := s.accounts().AddBalance(tx, passengerAccountID, ride.PricePerSeat.Neg()); err != nil {
			return domain.InternalError{Err: err}
		}

		created = booking
		return nil
	})
	if err != nil {
		var rejected domain.BookingRejected
		if errors.As(err, &rejected) {
			metrics.BookingsRejected.WithLabelValues(string(rejected.Reason)).Inc()
		}
		return err
	}

	metrics.BookingsCreated.Inc()
	if s.Analytics != nil {
		s.Analytics.Append(analytics.Event{
			Type:      analytics.EventBookingCreated,
			RideID:    rideID,
			BookingID: created.ID,
			AccountID: passengerAccountID,
		})
	}
	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d ride_id=%d passenger=%d", created.ID, rideID, passengerAccountID))
	return nil
}

// CancelBooking reverses the debit and marks the booking cancelled by
// the passenger. Only legal while the ride is still planned.
func (s BookingService) CancelBooking(ctx context.Context, rideID, passengerAccountID int64) error {
	if rideID <= 0 {
		return domain.ValidationError{Field: "ride_id", Msg: "invalid id"}
	}
	if passengerAccountID <= 0 {
		return domain.ValidationError{Field: "passenger_account_id", Msg: "invalid id"}
	}

	var cancelled models.Booking
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		ride, err := s.rides().LockByID(tx, rideID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CancelRejected{Reason: domain.ReasonRideNotFound}
		}
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if ride.Status != models.RideStatusPlanned {
			return domain.CancelRejected{Reason: domain.ReasonRideUnavailable}
		}

		if _, err := s.accounts().LockByID(tx, passengerAccountID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError{Resource: "account"}
			}
			return domain.InternalError{Err: err}
		}

		booking, err := s.bookings().GetForPassenger(tx, rideID, passengerAccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CancelRejected{Reason: domain.ReasonBookingNotFound}
		}
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if booking.Status != models.BookingStatusConfirmed {
			return domain.CancelRejected{Reason: domain.ReasonBookingNotActive}
		}

		if err := s.accounts().AddBalance(tx, passengerAccountID, ride.PricePerSeat); err != nil {
			return domain.InternalError{Err: err}
		}
		if err := s.bookings().UpdateStatus(tx, booking.ID, models.BookingStatusCancelledByPassenger); err != nil {
			return domain.InternalError{Err: err}
		}

		cancelled = booking
		return nil
	})
	if err != nil {
		return err
	}

	if s.Analytics != nil {
		s.Analytics.Append(analytics.Event{
			Type:      analytics.EventBookingCancelled,
			RideID:    rideID,
			BookingID: cancelled.ID,
			AccountID: passengerAccountID,
		})
	}
	utils.LogEvent(s.RequestID, "booking", "cancel",
		fmt.Sprintf("booking_id=%d ride_id=%d passenger=%d", cancelled.ID, rideID, passengerAccountID))
	return nil
}
