package repositories

import (
	"database/sql"

	intconfig "rideshare/internal/config"
	"rideshare/internal/domain/models"
)

type ReportRepo struct {
	DB *sql.DB
}

func (r ReportRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ReportRepo) Create(tx *sql.Tx, rideID, reporterID int64, reason string) (int64, error) {
	res, err := tx.Exec(`INSERT INTO reports (ride_id, reporter_account_id, reason, status) VALUES (?, ?, ?, ?)`,
		rideID, reporterID, reason, models.ReportStatusOpen)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetOpenByID loads an unresolved report under lock so two moderators
// cannot resolve it at the same time.
func (r ReportRepo) GetOpenByID(tx *sql.Tx, id int64) (models.Report, error) {
	var (
		rep        models.Report
		resolvedBy sql.NullInt64
	)
	err := tx.QueryRow(`
		SELECT id, ride_id, reporter_account_id, COALESCE(reason, ''), status, resolved_by, created_at
		FROM reports WHERE id = ? AND status = ? FOR UPDATE`,
		id, models.ReportStatusOpen,
	).Scan(&rep.ID, &rep.RideID, &rep.ReporterAccountID, &rep.Reason, &rep.Status, &resolvedBy, &rep.CreatedAt)
	if err != nil {
		return models.Report{}, err
	}
	if resolvedBy.Valid {
		v := resolvedBy.Int64
		rep.ResolvedBy = &v
	}
	return rep, nil
}

func (r ReportRepo) Close(tx *sql.Tx, id, moderatorID int64) error {
	_, err := tx.Exec(`UPDATE reports SET status = ?, resolved_by = ? WHERE id = ?`,
		models.ReportStatusClosed, moderatorID, id)
	return err
}
