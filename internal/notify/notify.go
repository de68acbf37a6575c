// Package notify is the boundary to the notification sender. Delivery
// is best-effort: failures are logged and never surfaced to the caller
// or its transaction result.
package notify

import "log/slog"

const (
	TemplateRideFinished  = "ride_finished"
	TemplateRideCancelled = "ride_cancelled"
)

type Sender interface {
	Send(recipientAccountID int64, template string, data map[string]any) error
}

// LogSender stands in for the real mail gateway and just logs the
// would-be message.
type LogSender struct{}

func (LogSender) Send(recipientAccountID int64, template string, data map[string]any) error {
	slog.Info("notification queued",
		"recipient", recipientAccountID,
		"template", template,
		"data", data,
	)
	return nil
}

// BestEffort sends and swallows the error, logging it locally.
func BestEffort(s Sender, recipientAccountID int64, template string, data map[string]any) {
	if s == nil {
		return
	}
	if err := s.Send(recipientAccountID, template, data); err != nil {
		slog.Warn("notification send failed",
			"recipient", recipientAccountID,
			"template", template,
			"error", err,
		)
	}
}
