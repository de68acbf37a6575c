package models

import "time"

type ReportStatus string

const (
	ReportStatusOpen   ReportStatus = "open"
	ReportStatusClosed ReportStatus = "closed"
)

// Report is filed by a passenger against a completed ride. A moderator
// resolving the report may force the driver credit through the same
// settlement guard the passenger confirmation uses.
type Report struct {
	ID                int64
	RideID            int64
	ReporterAccountID int64
	Reason            string
	Status            ReportStatus
	ResolvedBy        *int64
	CreatedAt         time.Time
}
