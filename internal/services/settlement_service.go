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

	"github.com/shopspring/decimal"
)

// PlatformCommission is the fixed fee deducted per settled booking,
// regardless of seat count.
var PlatformCommission = decimal.New(200, -2)

// SettlementService moves credits from passenger-side escrow to the
// driver. Two entry points (passenger token confirmation and moderator
// report crediting) converge on one settle primitive, so a booking can
// never be paid out twice: credits_transferred is the authoritative
// guard, independent of token lifecycle.
type SettlementService struct {
	AccountRepo    repositories.AccountRepo
	RideRepo       repositories.RideRepo
	BookingRepo    repositories.BookingRepo
	CommissionRepo repositories.CommissionRepo
	ReportRepo     repositories.ReportRepo
	DB             *sql.DB
	Analytics      *analytics.Log
	RequestID      string

	// Now is overridable for expiry tests.
	Now func() time.Time
}

func (s SettlementService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s SettlementService) accounts() repositories.AccountRepo {
	if s.AccountRepo.DB != nil {
		return s.AccountRepo
	}
	return repositories.AccountRepo{DB: s.db()}
}

func (s SettlementService) rides() repositories.RideRepo {
	if s.RideRepo.DB != nil {
		return s.RideRepo
	}
	return repositories.RideRepo{DB: s.db()}
}

func (s SettlementService) bookings() repositories.BookingRepo {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepo{DB: s.db()}
}

func (s SettlementService) commissions() repositories.CommissionRepo {
	if s.CommissionRepo.DB != nil {
		return s.CommissionRepo
	}
	return repositories.CommissionRepo{DB: s.db()}
}

func (s SettlementService) reports() repositories.ReportRepo {
	if s.ReportRepo.DB != nil {
		return s.ReportRepo
	}
	return repositories.ReportRepo{DB: s.db()}
}

func (s SettlementService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type settleResult struct {
	bookingID   int64
	rideID      int64
	driverID    int64
	passengerID int64
	netAmount   decimal.Decimal
}

// settle performs the guarded transfer for one booking. Lock order is
// ride -> driver account -> passenger account -> booking row; after the
// locks are held the guard is re-checked, so a concurrent settlement
// that won the race makes this one a no-op error instead of a second
// payout.
func (s SettlementService) settle(tx *sql.Tx, booking models.Booking) (settleResult, error) {
	ride, err := s.rides().LockByID(tx, booking.RideID)
	if err != nil {
		return settleResult{}, domain.InternalError{Err: err}
	}
	driver, err := s.accounts().LockByID(tx, ride.DriverAccountID)
	if err != nil {
		return settleResult{}, domain.InternalError{Err: err}
	}
	if _, err := s.accounts().LockByID(tx, booking.PassengerAccountID); err != nil {
		return settleResult{}, domain.InternalError{Err: err}
	}

	fresh, err := s.bookings().LockByID(tx, booking.ID)
	if err != nil {
		return settleResult{}, domain.InternalError{Err: err}
	}
	if fresh.CreditsTransferred {
		return settleResult{}, domain.ErrAlreadySettled
	}

	netAmount := ride.PricePerSeat.Sub(PlatformCommission)
	if netAmount.IsNegative() {
		netAmount = decimal.Zero
	}

	if err := s.accounts().AddBalance(tx, driver.ID, netAmount); err != nil {
		return settleResult{}, domain.InternalError{Err: err}
	}
	if err := s.rides().AddNetCredits(tx, ride.ID, netAmount); err != nil {
		return settleResult{}, domain.InternalError{Err: err}
	}
	if err := s.bookings().MarkSettled(tx, booking.ID, s.now()); err != nil {
		return settleResult{}, domain.InternalError{Err: err}
	}
	if err := s.commissions().Insert(tx, ride.ID, booking.PassengerAccountID, PlatformCommission); err != nil {
		return settleResult{}, domain.InternalError{Err: err}
	}

	return settleResult{
		bookingID:   booking.ID,
		rideID:      ride.ID,
		driverID:    driver.ID,
		passengerID: booking.PassengerAccountID,
		netAmount:   netAmount,
	}, nil
}

// ConfirmRide settles the booking identified by the passenger's
// single-use confirmation token. Repeating a successful call returns
// AlreadyConfirmed and mutates nothing; the token row is kept, the
// status guard is authoritative.
func (s SettlementService) ConfirmRide(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenInvalid
	}

	var result settleResult
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		booking, err := s.bookings().GetByToken(tx, token)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrTokenInvalid
		}
		if err != nil {
			return domain.InternalError{Err: err}
		}

		if booking.TokenExpired(s.now()) {
			return domain.ErrTokenExpired
		}
		switch booking.Status {
		case models.BookingStatusConfirmedAndCredited:
			return domain.ErrAlreadyConfirmed
		case models.BookingStatusReportedByPassenger:
			return domain.ErrAlreadyReported
		case models.BookingStatusConfirmed:
			// settle below
		default:
			// cancelled bookings have nothing left to confirm
			return domain.ErrTokenInvalid
		}

		result, err = s.settle(tx, booking)
		if errors.Is(err, domain.ErrAlreadySettled) {
			// lost the race against a concurrent settlement
			return domain.ErrAlreadyConfirmed
		}
		return err
	})
	if err != nil {
		return err
	}

	metrics.Settlements.WithLabelValues("confirm").Inc()
	s.appendSettlementEvents(result)
	utils.LogEvent(s.RequestID, "settlement", "confirm",
		fmt.Sprintf("booking_id=%d ride_id=%d net=%s", result.bookingID, result.rideID, result.netAmount.StringFixed(2)))
	return nil
}

// CreditDriverFromReport is the moderator-forced settlement path. It
// reuses the same guarded settle primitive, so a report-driven credit
// and a passenger confirmation can never both succeed for one booking.
func (s SettlementService) CreditDriverFromReport(ctx context.Context, reportID, moderatorID int64) error {
	if reportID <= 0 {
		return domain.ErrReportNotFound
	}

	var result settleResult
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		report, err := s.reports().GetOpenByID(tx, reportID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrReportNotFound
		}
		if err != nil {
			return domain.InternalError{Err: err}
		}

		booking, err := s.bookings().GetForPassenger(tx, report.RideID, report.ReporterAccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrReportNotFound
		}
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if booking.CreditsTransferred {
			return domain.ErrAlreadySettled
		}

		result, err = s.settle(tx, booking)
		if err != nil {
			return err
		}

		if err := s.reports().Close(tx, reportID, moderatorID); err != nil {
			return domain.InternalError{Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.Settlements.WithLabelValues("report").Inc()
	s.appendSettlementEvents(result)
	utils.LogEvent(s.RequestID, "settlement", "credit_from_report",
		fmt.Sprintf("report_id=%d booking_id=%d moderator=%d net=%s",
			reportID, result.bookingID, moderatorID, result.netAmount.StringFixed(2)))
	return nil
}

// ReportRide files a passenger report against a completed ride. The
// booking moves to reported_by_passenger, which blocks the token path
// until a moderator resolves the report.
func (s SettlementService) ReportRide(ctx context.Context, rideID, passengerAccountID int64, reason string) (int64, error) {
	if rideID <= 0 {
		return 0, domain.ValidationError{Field: "ride_id", Msg: "invalid id"}
	}

	var reportID int64
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		ride, err := s.rides().LockByID(tx, rideID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "ride"}
		}
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if ride.Status != models.RideStatusCompleted {
			return domain.ConflictError{Resource: "ride", Msg: "ride is not completed"}
		}

		booking, err := s.bookings().GetForPassenger(tx, rideID, passengerAccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "booking"}
		}
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if booking.CreditsTransferred {
			return domain.ErrAlreadySettled
		}
		if booking.Status == models.BookingStatusReportedByPassenger {
			return domain.ErrAlreadyReported
		}
		if booking.Status != models.BookingStatusConfirmed {
			return domain.ConflictError{Resource: "booking", Msg: "booking is not active"}
		}

		reportID, err = s.reports().Create(tx, rideID, passengerAccountID, reason)
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if err := s.bookings().UpdateStatus(tx, booking.ID, models.BookingStatusReportedByPassenger); err != nil {
			return domain.InternalError{Err: err}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	utils.LogEvent(s.RequestID, "settlement", "report",
		fmt.Sprintf("report_id=%d ride_id=%d reporter=%d", reportID, rideID, passengerAccountID))
	return reportID, nil
}

func (s SettlementService) appendSettlementEvents(r settleResult) {
	if s.Analytics == nil {
		return
	}
	s.Analytics.Append(analytics.Event{
		Type:      analytics.EventCreditsTransferred,
		RideID:    r.rideID,
		BookingID: r.bookingID,
		AccountID: r.driverID,
		Amount:    r.netAmount,
	})
	s.Analytics.Append(analytics.Event{
		Type:      analytics.EventCommissionRecorded,
		RideID:    r.rideID,
		BookingID: r.bookingID,
		AccountID: r.passengerID,
		Amount:    PlatformCommission,
	})
}
