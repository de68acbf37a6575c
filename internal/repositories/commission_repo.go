package repositories

import (
	"database/sql"

	intconfig "rideshare/internal/config"

	"github.com/shopspring/decimal"
)

type CommissionRepo struct {
	DB *sql.DB
}

func (r CommissionRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Insert appends one commission record. Rows are never updated.
func (r CommissionRepo) Insert(tx *sql.Tx, rideID, passengerID int64, amount decimal.Decimal) error {
	_, err := tx.Exec(`INSERT INTO commission_records (ride_id, passenger_id, amount) VALUES (?, ?, ?)`,
		rideID, passengerID, amount)
	return err
}

// TotalForRide sums commissions taken on a ride (reporting view).
func (r CommissionRepo) TotalForRide(rideID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db().QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM commission_records WHERE ride_id = ?`,
		rideID).Scan(&total)
	return total, err
}
