package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRecord is append-only: one row per settled booking, never
// updated afterwards.
type CommissionRecord struct {
	ID          int64
	RideID      int64
	PassengerID int64
	Amount      decimal.Decimal
	CreatedAt   time.Time
}
