package domain

import "errors"

// SettlementError covers every terminal outcome of the confirmation and
// report-crediting paths that is not a success. The Code values are part
// of the API contract.
type SettlementError struct {
	Code string
	Msg  string
}

func (e SettlementError) Error() string { return e.Msg }

var (
	ErrTokenInvalid = SettlementError{Code: "token_invalid", Msg: "confirmation token is not valid"}
	ErrTokenExpired = SettlementError{Code: "token_expired", Msg: "confirmation token has expired"}

	// ErrAlreadyConfirmed and ErrAlreadySettled both mean the credits were
	// already transferred; the former is the passenger-token wording, the
	// latter the moderator-report wording.
	ErrAlreadyConfirmed = SettlementError{Code: "already_confirmed", Msg: "booking already confirmed and credited"}
	ErrAlreadySettled   = SettlementError{Code: "already_settled", Msg: "booking already settled"}

	ErrAlreadyReported = SettlementError{Code: "already_reported", Msg: "booking is under report review"}
	ErrReportNotFound  = SettlementError{Code: "report_not_found", Msg: "report not found"}
)

func IsSettlementError(err error) bool {
	var target SettlementError
	return errors.As(err, &target)
}

// IsBenignRepeat reports whether err means the operation already
// succeeded earlier, so the caller lost nothing.
func IsBenignRepeat(err error) bool {
	var target SettlementError
	if !errors.As(err, &target) {
		return false
	}
	return target.Code == ErrAlreadyConfirmed.Code || target.Code == ErrAlreadySettled.Code
}
