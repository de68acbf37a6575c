package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rideshare/internal/analytics"
	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
	"rideshare/internal/metrics"
	"rideshare/internal/notify"
	"rideshare/internal/repositories"
	"rideshare/internal/utils"
)

// RideService drives a ride through its state machine. Transitions are
// driver-initiated and strictly forward; a ride never leaves completed
// or cancelled.
type RideService struct {
	AccountRepo repositories.AccountRepo
	RideRepo    repositories.RideRepo
	BookingRepo repositories.BookingRepo
	DB          *sql.DB
	Analytics   *analytics.Log
	Notifier    notify.Sender
	RequestID   string
}

func (s RideService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s RideService) accounts() repositories.AccountRepo {
	if s.AccountRepo.DB != nil {
		return s.AccountRepo
	}
	return repositories.AccountRepo{DB: s.db()}
}

func (s RideService) rides() repositories.RideRepo {
	if s.RideRepo.DB != nil {
		return s.RideRepo
	}
	return repositories.RideRepo{DB: s.db()}
}

func (s RideService) bookings() repositories.BookingRepo {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepo{DB: s.db()}
}

// lockForTransition loads the ride under lock and checks both the actor
// and the state machine edge. Wrong actor and wrong source status are
// reported the same way; the caller should re-fetch current state.
func (s RideService) lockForTransition(tx *sql.Tx, rideID, driverAccountID int64, action string) (models.Ride, error) {
	ride, err := s.rides().LockByID(tx, rideID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ride{}, domain.NotFoundError{Resource: "ride"}
	}
	if err != nil {
		return models.Ride{}, domain.InternalError{Err: err}
	}
	if ride.DriverAccountID != driverAccountID || !ride.CanTransition(action) {
		return models.Ride{}, domain.InvalidRideTransition{
			RideID: rideID,
			From:   string(ride.Status),
			Action: action,
		}
	}
	return ride, nil
}

// StartRide moves planned -> ongoing.
func (s RideService) StartRide(ctx context.Context, rideID, driverAccountID int64) error {
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		if _, err := s.lockForTransition(tx, rideID, driverAccountID, "start"); err != nil {
			return err
		}
		if err := s.rides().UpdateStatus(tx, rideID, models.RideStatusOngoing); err != nil {
			return domain.InternalError{Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RideTransitions.WithLabelValues("start").Inc()
	utils.LogEvent(s.RequestID, "ride", "start", fmt.Sprintf("ride_id=%d", rideID))
	return nil
}

// FinishRide moves ongoing -> completed. Bookings stay confirmed until
// each passenger confirms with their token; passengers are notified
// with the token after commit, best-effort.
func (s RideService) FinishRide(ctx context.Context, rideID, driverAccountID int64) error {
	var toNotify []models.Booking
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		if _, err := s.lockForTransition(tx, rideID, driverAccountID, "finish"); err != nil {
			return err
		}

		bookings, err := s.bookings().ListConfirmedByRide(tx, rideID)
		if err != nil {
			return domain.InternalError{Err: err}
		}
		toNotify = bookings

		if err := s.rides().UpdateStatus(tx, rideID, models.RideStatusCompleted); err != nil {
			return domain.InternalError{Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RideTransitions.WithLabelValues("finish").Inc()
	if s.Analytics != nil {
		s.Analytics.Append(analytics.Event{
			Type:      analytics.EventRideCompleted,
			RideID:    rideID,
			AccountID: driverAccountID,
		})
	}
	for _, b := range toNotify {
		notify.BestEffort(s.Notifier, b.PassengerAccountID, notify.TemplateRideFinished, map[string]any{
			"ride_id":            rideID,
			"confirmation_token": b.ConfirmationToken,
		})
	}
	utils.LogEvent(s.RequestID, "ride", "finish",
		fmt.Sprintf("ride_id=%d confirmed_bookings=%d", rideID, len(toNotify)))
	return nil
}

// CancelRide moves planned -> cancelled and refunds every confirmed
// booking in full, all inside the same transaction as the status
// update.
func (s RideService) CancelRide(ctx context.Context, rideID, driverAccountID int64) error {
	var refunded []models.Booking
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		ride, err := s.lockForTransition(tx, rideID, driverAccountID, "cancel")
		if err != nil {
			return err
		}

		bookings, err := s.bookings().ListConfirmedByRide(tx, rideID)
		if err != nil {
			return domain.InternalError{Err: err}
		}

		// Passenger accounts are locked in ascending id order (the list
		// is sorted) so concurrent cancels cannot deadlock each other.
		for _, b := range bookings {
			if _, err := s.accounts().LockByID(tx, b.PassengerAccountID); err != nil {
				return domain.InternalError{Err: err}
			}
			if err := s.accounts().AddBalance(tx, b.PassengerAccountID, ride.PricePerSeat); err != nil {
				return domain.InternalError{Err: err}
			}
			if err := s.bookings().UpdateStatus(tx, b.ID, models.BookingStatusCancelledByDriver); err != nil {
				return domain.InternalError{Err: err}
			}
		}

		if err := s.rides().UpdateStatus(tx, rideID, models.RideStatusCancelled); err != nil {
			return domain.InternalError{Err: err}
		}

		refunded = bookings
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RideTransitions.WithLabelValues("cancel").Inc()
	if s.Analytics != nil {
		s.Analytics.Append(analytics.Event{
			Type:      analytics.EventRideCancelled,
			RideID:    rideID,
			AccountID: driverAccountID,
		})
	}
	for _, b := range refunded {
		notify.BestEffort(s.Notifier, b.PassengerAccountID, notify.TemplateRideCancelled, map[string]any{
			"ride_id": rideID,
		})
	}
	utils.LogEvent(s.RequestID, "ride", "cancel",
		fmt.Sprintf("ride_id=%d refunded_bookings=%d", rideID, len(refunded)))
	return nil
}
