package repositories

import (
	"database/sql"
	"fmt"

	intconfig "rideshare/internal/config"
	"rideshare/internal/domain/models"

	"github.com/shopspring/decimal"
)

type AccountRepo struct {
	DB *sql.DB
}

func (r AccountRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// LockByID loads the account row under an exclusive lock held until the
// surrounding transaction commits or rolls back.
func (r AccountRepo) LockByID(tx *sql.Tx, id int64) (models.Account, error) {
	var a models.Account
	err := tx.QueryRow(`SELECT id, balance FROM accounts WHERE id = ? FOR UPDATE`, id).
		Scan(&a.ID, &a.Balance)
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// AddBalance applies a signed delta to the account balance. The WHERE
// guard keeps the balance non-negative even if a caller skipped the
// locked pre-check; zero rows affected means the debit would overdraw.
func (r AccountRepo) AddBalance(tx *sql.Tx, id int64, delta decimal.Decimal) error {
	res, err := tx.Exec(`UPDATE accounts SET balance = balance + ? WHERE id = ? AND balance + ? >= 0`,
		delta, id, delta)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("account %d: balance update refused", id)
	}
	return nil
}

// GetByID is the plain (unlocked) read used by views.
func (r AccountRepo) GetByID(id int64) (models.Account, error) {
	var a models.Account
	err := r.db().QueryRow(`SELECT id, balance FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.Balance)
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// Create inserts the account row for a new user. Account id equals the
// user id; one account per user.
func (r AccountRepo) Create(tx *sql.Tx, id int64, balance decimal.Decimal) error {
	_, err := tx.Exec(`INSERT INTO accounts (id, balance) VALUES (?, ?)`, id, balance)
	return err
}
