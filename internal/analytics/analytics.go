// Package analytics appends event records to the secondary reporting
// stream. Writes are fire-and-forget: a full buffer drops the event
// with a local warning, and nothing here can fail or roll back a
// committed ledger transaction. The stream is never read back as a
// source of truth for balances.
package analytics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventCommissionRecorded = "commission_recorded"
	EventCreditsTransferred = "credits_transferred"
	EventRideCompleted      = "ride_completed"
	EventRideCancelled      = "ride_cancelled"
	EventBookingCreated     = "booking_created"
	EventBookingCancelled   = "booking_cancelled"
)

type Event struct {
	Type      string
	RideID    int64
	BookingID int64
	AccountID int64
	Amount    decimal.Decimal
	At        time.Time
}

// Log is the append-only event sink. Append never blocks the caller;
// a single background writer drains the buffer.
type Log struct {
	ch chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewLog(buffer int) *Log {
	if buffer <= 0 {
		buffer = 256
	}
	l := &Log{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Append queues the event. When the buffer is full the event is dropped
// and counted as a warning; callers are never blocked.
func (l *Log) Append(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case l.ch <- e:
	default:
		slog.Warn("analytics buffer full, dropping event", "event_type", e.Type, "ride_id", e.RideID)
	}
}

// Close drains queued events and stops the writer.
func (l *Log) Close() {
	l.closeOnce.Do(func() {
		close(l.ch)
		<-l.done
	})
}

func (l *Log) run() {
	defer close(l.done)
	for e := range l.ch {
		l.write(e)
	}
}

func (l *Log) write(e Event) {
	attrs := []any{
		"event_type", e.Type,
		"ride_id", e.RideID,
		"at", e.At.UTC().Format(time.RFC3339),
	}
	if e.BookingID != 0 {
		attrs = append(attrs, "booking_id", e.BookingID)
	}
	if e.AccountID != 0 {
		attrs = append(attrs, "account_id", e.AccountID)
	}
	if !e.Amount.IsZero() {
		attrs = append(attrs, "amount", e.Amount.StringFixed(2))
	}
	slog.Info("analytics event", attrs...)
}
