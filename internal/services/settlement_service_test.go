package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newSettlementMock(t *testing.T) (sqlmock.Sqlmock, SettlementService, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := SettlementService{DB: db}
	return mock, svc, func() { db.Close() }
}

func completedRideRow(id, driverID int64, price string) *sqlmock.Rows {
	return sqlmock.NewRows(rideCols).
		AddRow(id, driverID, "Bandung", "Jakarta", "2025-06-01 08:00", 4, price, string(models.RideStatusCompleted), "0.00")
}

func bookingRow(id, rideID, passengerID int64, status models.BookingStatus, token string, expires time.Time, transferred bool) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).
		AddRow(id, rideID, passengerID, 1, string(status), token, expires, transferred, nil)
}

func expectSettle(mock sqlmock.Sqlmock, rideID, driverID, passengerID, bookingID int64, price string, expires time.Time) {
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = (.+) FOR UPDATE").
		WithArgs(rideID).WillReturnRows(completedRideRow(rideID, driverID, price))
	expectAccountLock(mock, driverID, "0.00")
	expectAccountLock(mock, passengerID, "0.00")
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).
		WillReturnRows(bookingRow(bookingID, rideID, passengerID, models.BookingStatusConfirmed, "tok-1", expires, false))
	mock.ExpectExec("UPDATE accounts SET balance").
		WithArgs(sqlmock.AnyArg(), driverID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rides SET total_net_credits_earned").
		WithArgs(sqlmock.AnyArg(), rideID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("credits_transferred = 1").
		WithArgs(string(models.BookingStatusConfirmedAndCredited), sqlmock.AnyArg(), bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO commission_records").
		WithArgs(rideID, passengerID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

// Scenario: price 10, commission 2 -> driver is credited 8 and one
// commission record of 2 is written.
func TestConfirmRideTransfersNetAmountOnce(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE confirmation_token").
		WithArgs("tok-1").
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusConfirmed, "tok-1", expires, false))
	expectSettle(mock, 7, 1, 2, 11, "10.00", expires)
	mock.ExpectCommit()

	if err := svc.ConfirmRide(context.Background(), "tok-1"); err != nil {
		t.Fatalf("expected settlement to succeed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmRideUnknownToken(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE confirmation_token").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectRollback()

	if err := svc.ConfirmRide(context.Background(), "nope"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected TokenInvalid, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmRideExpiredTokenLeavesBalancesAlone(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expired := time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE confirmation_token").
		WithArgs("tok-1").
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusConfirmed, "tok-1", expired, false))
	mock.ExpectRollback()

	if err := svc.ConfirmRide(context.Background(), "tok-1"); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected TokenExpired, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A second confirmation with the same token is a benign no-op: the
// status guard answers before any row is locked or mutated.
func TestConfirmRideSecondCallIsAlreadyConfirmed(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE confirmation_token").
		WithArgs("tok-1").
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusConfirmedAndCredited, "tok-1", expires, true))
	mock.ExpectRollback()

	if err := svc.ConfirmRide(context.Background(), "tok-1"); !errors.Is(err, domain.ErrAlreadyConfirmed) {
		t.Fatalf("expected AlreadyConfirmed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmRideReportedBookingIsBlocked(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE confirmation_token").
		WithArgs("tok-1").
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusReportedByPassenger, "tok-1", expires, false))
	mock.ExpectRollback()

	if err := svc.ConfirmRide(context.Background(), "tok-1"); !errors.Is(err, domain.ErrAlreadyReported) {
		t.Fatalf("expected AlreadyReported, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Losing the race: the guard flipped between the token read and the
// locked re-read. The caller still gets AlreadyConfirmed and no second
// payout happens.
func TestConfirmRideGuardRecheckedUnderLock(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE confirmation_token").
		WithArgs("tok-1").
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusConfirmed, "tok-1", expires, false))
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(7)).WillReturnRows(completedRideRow(7, 1, "10.00"))
	expectAccountLock(mock, 1, "0.00")
	expectAccountLock(mock, 2, "0.00")
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(11)).
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusConfirmedAndCredited, "tok-1", expires, true))
	mock.ExpectRollback()

	if err := svc.ConfirmRide(context.Background(), "tok-1"); !errors.Is(err, domain.ErrAlreadyConfirmed) {
		t.Fatalf("expected AlreadyConfirmed after losing the race, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var reportCols = []string{"id", "ride_id", "reporter_account_id", "reason", "status", "resolved_by", "created_at"}

func TestCreditDriverFromReportSettlesAndClosesReport(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5), string(models.ReportStatusOpen)).
		WillReturnRows(sqlmock.NewRows(reportCols).
			AddRow(5, 7, 2, "driver never showed", string(models.ReportStatusOpen), nil, time.Now()))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE ride_id = (.+) AND passenger_account_id").
		WithArgs(int64(7), int64(2)).
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusReportedByPassenger, "tok-1", expires, false))
	expectSettle(mock, 7, 1, 2, 11, "10.00", expires)
	mock.ExpectExec("UPDATE reports SET status").
		WithArgs(string(models.ReportStatusClosed), int64(99), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.CreditDriverFromReport(context.Background(), 5, 99); err != nil {
		t.Fatalf("expected report credit to succeed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreditDriverFromReportUnknownReport(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5), string(models.ReportStatusOpen)).
		WillReturnRows(sqlmock.NewRows(reportCols))
	mock.ExpectRollback()

	if err := svc.CreditDriverFromReport(context.Background(), 5, 99); !errors.Is(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ReportNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Dual-path exclusion: once the passenger confirmation settled the
// booking, the moderator path must refuse a second transfer.
func TestCreditDriverFromReportAfterConfirmIsAlreadySettled(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(5), string(models.ReportStatusOpen)).
		WillReturnRows(sqlmock.NewRows(reportCols).
			AddRow(5, 7, 2, "driver never showed", string(models.ReportStatusOpen), nil, time.Now()))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE ride_id = (.+) AND passenger_account_id").
		WithArgs(int64(7), int64(2)).
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusConfirmedAndCredited, "tok-1", expires, true))
	mock.ExpectRollback()

	if err := svc.CreditDriverFromReport(context.Background(), 5, 99); !errors.Is(err, domain.ErrAlreadySettled) {
		t.Fatalf("expected AlreadySettled, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportRideMarksBookingReported(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(7)).WillReturnRows(completedRideRow(7, 1, "10.00"))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE ride_id = (.+) AND passenger_account_id").
		WithArgs(int64(7), int64(2)).
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusConfirmed, "tok-1", expires, false))
	mock.ExpectExec("INSERT INTO reports").
		WithArgs(int64(7), int64(2), "driver never showed", string(models.ReportStatusOpen)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("UPDATE bookings SET status = \\? WHERE id = \\?").
		WithArgs(string(models.BookingStatusReportedByPassenger), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reportID, err := svc.ReportRide(context.Background(), 7, 2, "driver never showed")
	if err != nil {
		t.Fatalf("expected report to be filed, got %v", err)
	}
	if reportID != 5 {
		t.Fatalf("unexpected report id %d", reportID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A settled booking cannot be reported afterwards.
func TestReportRideRefusedAfterSettlement(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = (.+) FOR UPDATE").
		WithArgs(int64(7)).WillReturnRows(completedRideRow(7, 1, "10.00"))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE ride_id = (.+) AND passenger_account_id").
		WithArgs(int64(7), int64(2)).
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusConfirmedAndCredited, "tok-1", expires, true))
	mock.ExpectRollback()

	if _, err := svc.ReportRide(context.Background(), 7, 2, "x"); !errors.Is(err, domain.ErrAlreadySettled) {
		t.Fatalf("expected AlreadySettled, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Commission never pushes the net amount below zero.
func TestSettleClampsNetAmountAtZero(t *testing.T) {
	mock, svc, done := newSettlementMock(t)
	defer done()

	expires := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE confirmation_token").
		WithArgs("tok-1").
		WillReturnRows(bookingRow(11, 7, 2, models.BookingStatusConfirmed, "tok-1", expires, false))
	expectSettle(mock, 7, 1, 2, 11, "2.00", expires)
	mock.ExpectCommit()

	if err := svc.ConfirmRide(context.Background(), "tok-1"); err != nil {
		t.Fatalf("expected settlement to succeed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
