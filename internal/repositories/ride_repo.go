package repositories

import (
	"database/sql"

	intconfig "rideshare/internal/config"
	"rideshare/internal/domain/models"

	"github.com/shopspring/decimal"
)

type RideRepo struct {
	DB *sql.DB
}

func (r RideRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const rideColumns = `id, driver_account_id, origin, destination, departs_at,
	seats_offered, price_per_seat, status, total_net_credits_earned`

func scanRide(row *sql.Row) (models.Ride, error) {
	var ride models.Ride
	err := row.Scan(
		&ride.ID,
		&ride.DriverAccountID,
		&ride.Origin,
		&ride.Destination,
		&ride.DepartsAt,
		&ride.SeatsOffered,
		&ride.PricePerSeat,
		&ride.Status,
		&ride.TotalNetCreditsEarned,
	)
	if err != nil {
		return models.Ride{}, err
	}
	return ride, nil
}

// LockByID loads the ride row under an exclusive lock. Every writer
// locks the ride first, so concurrent bookings and settlements on the
// same ride serialize here.
func (r RideRepo) LockByID(tx *sql.Tx, id int64) (models.Ride, error) {
	return scanRide(tx.QueryRow(`SELECT `+rideColumns+` FROM rides WHERE id = ? FOR UPDATE`, id))
}

func (r RideRepo) GetByID(id int64) (models.Ride, error) {
	return scanRide(r.db().QueryRow(`SELECT `+rideColumns+` FROM rides WHERE id = ?`, id))
}

// List returns rides for the catalog view, newest first.
func (r RideRepo) List() ([]models.Ride, error) {
	rows, err := r.db().Query(`SELECT ` + rideColumns + ` FROM rides ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Ride{}
	for rows.Next() {
		var ride models.Ride
		if err := rows.Scan(
			&ride.ID,
			&ride.DriverAccountID,
			&ride.Origin,
			&ride.Destination,
			&ride.DepartsAt,
			&ride.SeatsOffered,
			&ride.PricePerSeat,
			&ride.Status,
			&ride.TotalNetCreditsEarned,
		); err != nil {
			return nil, err
		}
		out = append(out, ride)
	}
	return out, rows.Err()
}

// Create inserts a published ride (driver publish flow). Input is
// validated by the caller.
func (r RideRepo) Create(ride models.Ride) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO rides (driver_account_id, origin, destination, departs_at, seats_offered, price_per_seat, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ride.DriverAccountID,
		ride.Origin,
		ride.Destination,
		ride.DepartsAt,
		ride.SeatsOffered,
		ride.PricePerSeat,
		models.RideStatusPlanned,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RideRepo) UpdateStatus(tx *sql.Tx, id int64, status models.RideStatus) error {
	_, err := tx.Exec(`UPDATE rides SET status = ? WHERE id = ?`, status, id)
	return err
}

// AddNetCredits bumps the driver-earnings accumulator on the ride.
func (r RideRepo) AddNetCredits(tx *sql.Tx, id int64, amount decimal.Decimal) error {
	_, err := tx.Exec(`UPDATE rides SET total_net_credits_earned = total_net_credits_earned + ? WHERE id = ?`,
		amount, id)
	return err
}
