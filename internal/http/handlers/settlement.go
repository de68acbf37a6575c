package handlers

import (
	"net/http"
	"strings"

	"rideshare/internal/domain"
	"rideshare/internal/http/middleware"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

func settlementService(c *gin.Context) services.SettlementService {
	return services.SettlementService{
		Analytics: analyticsLog,
		RequestID: middleware.GetRequestID(c),
	}
}

// POST /api/confirm/:token
//
// The token arrives in the emailed confirmation link; no auth is
// required, possession of the token is the credential.
func ConfirmRide(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if err := settlementService(c).ConfirmRide(c.Request.Context(), token); err != nil {
		// a second click on the same link changes nothing; do not alarm the user
		if domain.IsBenignRepeat(err) {
			c.JSON(http.StatusOK, gin.H{"success": true, "code": "already_confirmed"})
			return
		}
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type reportRequest struct {
	Reason string `json:"reason"`
}

// POST /api/rides/:id/report
func ReportRide(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	var req reportRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	reportID, err := settlementService(c).ReportRide(c.Request.Context(), rideID, identity.AccountID, strings.TrimSpace(req.Reason))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report_id": reportID})
}

// POST /api/reports/:id/credit (moderator only)
func CreditDriverFromReport(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	reportID, ok := pathID(c)
	if !ok {
		return
	}

	if err := settlementService(c).CreditDriverFromReport(c.Request.Context(), reportID, identity.AccountID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
