package handlers

import (
	"net/http"

	"rideshare/internal/http/middleware"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		Analytics:  analyticsLog,
		ConfirmTTL: confirmTTL,
		RequestID:  middleware.GetRequestID(c),
	}
}

// POST /api/rides/:id/bookings
func CreateBooking(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	if err := bookingService(c).CreateBooking(c.Request.Context(), rideID, identity.AccountID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// DELETE /api/rides/:id/bookings
func CancelBooking(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	if err := bookingService(c).CancelBooking(c.Request.Context(), rideID, identity.AccountID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
