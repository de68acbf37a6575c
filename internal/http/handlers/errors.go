package handlers

import (
	"errors"
	"net/http"

	"rideshare/internal/domain"
	"rideshare/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Every
// rejected operation carries its stable reason code so the caller can
// tell "nothing happened because it already succeeded" apart from
// "nothing happened because it failed".
func RespondDomainError(c *gin.Context, err error) {
	var (
		settlement domain.SettlementError
		booking    domain.BookingRejected
		cancel     domain.CancelRejected
	)
	switch {
	case errors.As(err, &settlement):
		respondError(c, settlementStatus(settlement), settlement.Code, settlement.Msg, nil)
	case errors.As(err, &booking):
		respondError(c, http.StatusConflict, string(booking.Reason), booking.Error(), nil)
	case errors.As(err, &cancel):
		respondError(c, http.StatusConflict, string(cancel.Reason), cancel.Error(), nil)
	case domain.IsInvalidTransition(err):
		respondError(c, http.StatusConflict, "invalid_ride_transition", err.Error(), nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}

func settlementStatus(e domain.SettlementError) int {
	switch e.Code {
	case domain.ErrTokenInvalid.Code, domain.ErrReportNotFound.Code:
		return http.StatusNotFound
	case domain.ErrTokenExpired.Code:
		return http.StatusGone
	default:
		return http.StatusConflict
	}
}
