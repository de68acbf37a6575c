package repositories

import (
	"database/sql"
	"time"

	intconfig "rideshare/internal/config"
	"rideshare/internal/domain/models"
)

type BookingRepo struct {
	DB *sql.DB
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, ride_id, passenger_account_id, seats_booked, status,
	confirmation_token, token_expires_at, credits_transferred, confirmed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b           models.Booking
		confirmedAt sql.NullTime
	)
	err := row.Scan(
		&b.ID,
		&b.RideID,
		&b.PassengerAccountID,
		&b.SeatsBooked,
		&b.Status,
		&b.ConfirmationToken,
		&b.TokenExpiresAt,
		&b.CreditsTransferred,
		&confirmedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		b.ConfirmedAt = &t
	}
	return b, nil
}

// Insert stores a new confirmed booking and returns its id.
func (r BookingRepo) Insert(tx *sql.Tx, b models.Booking) (int64, error) {
	res, err := tx.Exec(`
		INSERT INTO bookings (ride_id, passenger_account_id, seats_booked, status, confirmation_token, token_expires_at, credits_transferred)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		b.RideID,
		b.PassengerAccountID,
		b.SeatsBooked,
		b.Status,
		b.ConfirmationToken,
		b.TokenExpiresAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CountConfirmedSeats sums seats over confirmed bookings of a ride.
// Callers hold the ride row lock, so the count cannot move under them.
func (r BookingRepo) CountConfirmedSeats(tx *sql.Tx, rideID int64) (int, error) {
	var seats int
	err := tx.QueryRow(`
		SELECT COALESCE(SUM(seats_booked), 0) FROM bookings
		WHERE ride_id = ? AND status = ?`,
		rideID, models.BookingStatusConfirmed,
	).Scan(&seats)
	return seats, err
}

// ExistsForPassenger reports whether any booking row, of any status,
// exists for the (ride, passenger) pair.
func (r BookingRepo) ExistsForPassenger(tx *sql.Tx, rideID, passengerID int64) (bool, error) {
	var count int
	err := tx.QueryRow(`SELECT COUNT(*) FROM bookings WHERE ride_id = ? AND passenger_account_id = ?`,
		rideID, passengerID).Scan(&count)
	return count > 0, err
}

func (r BookingRepo) GetForPassenger(tx *sql.Tx, rideID, passengerID int64) (models.Booking, error) {
	return scanBooking(tx.QueryRow(
		`SELECT `+bookingColumns+` FROM bookings WHERE ride_id = ? AND passenger_account_id = ?`,
		rideID, passengerID))
}

// GetByToken is a plain read; settlement re-locks the row afterwards in
// the ride -> accounts -> booking lock order.
func (r BookingRepo) GetByToken(tx *sql.Tx, token string) (models.Booking, error) {
	return scanBooking(tx.QueryRow(
		`SELECT `+bookingColumns+` FROM bookings WHERE confirmation_token = ?`, token))
}

// LockByID re-reads the booking row under an exclusive lock.
func (r BookingRepo) LockByID(tx *sql.Tx, id int64) (models.Booking, error) {
	return scanBooking(tx.QueryRow(
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
}

// GetByID is the unlocked read used by views (receipt rendering).
func (r BookingRepo) GetByID(id int64) (models.Booking, error) {
	return scanBooking(r.db().QueryRow(
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
}

// ListConfirmedByRide returns the ride's active bookings. Callers hold
// the ride lock, which serializes all booking writers for the ride.
func (r BookingRepo) ListConfirmedByRide(tx *sql.Tx, rideID int64) ([]models.Booking, error) {
	rows, err := tx.Query(`
		SELECT `+bookingColumns+` FROM bookings
		WHERE ride_id = ? AND status = ?
		ORDER BY passenger_account_id ASC`,
		rideID, models.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BookingRepo) UpdateStatus(tx *sql.Tx, id int64, status models.BookingStatus) error {
	_, err := tx.Exec(`UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	return err
}

// MarkSettled flips the idempotency guard and stamps confirmation time
// in one statement.
func (r BookingRepo) MarkSettled(tx *sql.Tx, id int64, at time.Time) error {
	_, err := tx.Exec(`
		UPDATE bookings SET status = ?, credits_transferred = 1, confirmed_at = ?
		WHERE id = ?`,
		models.BookingStatusConfirmedAndCredited, at, id)
	return err
}
