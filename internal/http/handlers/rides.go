package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"rideshare/internal/domain/models"
	"rideshare/internal/http/middleware"
	"rideshare/internal/repositories"
	"rideshare/internal/services"
	"rideshare/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func rideView(r models.Ride) gin.H {
	return gin.H{
		"id":                       r.ID,
		"driver_account_id":        r.DriverAccountID,
		"origin":                   r.Origin,
		"destination":              r.Destination,
		"departs_at":               r.DepartsAt,
		"seats_offered":            r.SeatsOffered,
		"price_per_seat":           utils.FormatCredits(r.PricePerSeat),
		"status":                   r.Status,
		"total_net_credits_earned": utils.FormatCredits(r.TotalNetCreditsEarned),
	}
}

// GET /api/rides
func GetRides(c *gin.Context) {
	rides, err := repositories.RideRepo{}.List()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "ride list failed", err)
		return
	}
	out := make([]gin.H, 0, len(rides))
	for _, r := range rides {
		out = append(out, rideView(r))
	}
	c.JSON(http.StatusOK, gin.H{"rides": out})
}

// GET /api/rides/:id
func GetRideByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ride, err := repositories.RideRepo{}.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondError(c, http.StatusNotFound, "ride not found", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "ride lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, rideView(ride))
}

type createRideRequest struct {
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	DepartsAt    string `json:"departs_at"`
	SeatsOffered int    `json:"seats_offered"`
	PricePerSeat string `json:"price_per_seat"`
}

// POST /api/rides (driver publish flow)
func CreateRide(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req createRideRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	if req.SeatsOffered < 1 || req.SeatsOffered > 8 {
		RespondError(c, http.StatusBadRequest, "seats_offered must be between 1 and 8", nil)
		return
	}
	price, err := utils.ParseCredits(req.PricePerSeat)
	if err != nil || price.LessThan(decimal.NewFromInt(2)) {
		RespondError(c, http.StatusBadRequest, "price_per_seat must be at least 2 credits", nil)
		return
	}

	id, err := repositories.RideRepo{}.Create(models.Ride{
		DriverAccountID: identity.AccountID,
		Origin:          strings.TrimSpace(req.Origin),
		Destination:     strings.TrimSpace(req.Destination),
		DepartsAt:       strings.TrimSpace(req.DepartsAt),
		SeatsOffered:    req.SeatsOffered,
		PricePerSeat:    price,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "ride publish failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "status": models.RideStatusPlanned})
}

func rideLifecycle(c *gin.Context, action func(svc services.RideService, ctx context.Context, rideID, driverID int64) error) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	svc := services.RideService{
		Analytics: analyticsLog,
		Notifier:  notifier,
		RequestID: middleware.GetRequestID(c),
	}
	if err := action(svc, c.Request.Context(), rideID, identity.AccountID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/rides/:id/start
func StartRide(c *gin.Context) {
	rideLifecycle(c, func(svc services.RideService, ctx context.Context, rideID, driverID int64) error {
		return svc.StartRide(ctx, rideID, driverID)
	})
}

// POST /api/rides/:id/finish
func FinishRide(c *gin.Context) {
	rideLifecycle(c, func(svc services.RideService, ctx context.Context, rideID, driverID int64) error {
		return svc.FinishRide(ctx, rideID, driverID)
	})
}

// POST /api/rides/:id/cancel
func CancelRide(c *gin.Context) {
	rideLifecycle(c, func(svc services.RideService, ctx context.Context, rideID, driverID int64) error {
		return svc.CancelRide(ctx, rideID, driverID)
	})
}

// GET /api/rides/:id/earnings (driver view)
func GetRideEarnings(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	ride, err := repositories.RideRepo{}.GetByID(rideID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondError(c, http.StatusNotFound, "ride not found", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "ride lookup failed", err)
		return
	}
	if ride.DriverAccountID != identity.AccountID {
		RespondError(c, http.StatusForbidden, "only the driver can view ride earnings", nil)
		return
	}

	commission, err := repositories.CommissionRepo{}.TotalForRide(rideID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "earnings lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ride_id":                  ride.ID,
		"status":                   ride.Status,
		"total_net_credits_earned": utils.FormatCredits(ride.TotalNetCreditsEarned),
		"commission_collected":     utils.FormatCredits(commission),
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}
