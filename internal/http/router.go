package api

import (
	"log/slog"
	stdhttp "net/http"

	"rideshare/internal/analytics"
	intconfig "rideshare/internal/config"
	h "rideshare/internal/http/handlers"
	"rideshare/internal/http/middleware"
	"rideshare/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(env intconfig.Env, log *analytics.Log, sender notify.Sender) *gin.Engine {
	h.Configure(env, log, sender)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		slog.Warn("failed to set trusted proxies", "error", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		// possession of the emailed token is the credential here
		api.POST("/confirm/:token", h.ConfirmRide)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth([]byte(env.JWTSecret)))
		{
			authed.GET("/accounts/me", h.GetMyAccount)

			rides := authed.Group("/rides")
			rides.GET("", h.GetRides)
			rides.GET("/:id", h.GetRideByID)
			rides.GET("/:id/earnings", h.GetRideEarnings)
			rides.POST("", h.CreateRide)
			rides.POST("/:id/start", h.StartRide)
			rides.POST("/:id/finish", h.FinishRide)
			rides.POST("/:id/cancel", h.CancelRide)
			rides.POST("/:id/bookings", h.CreateBooking)
			rides.DELETE("/:id/bookings", h.CancelBooking)
			rides.POST("/:id/report", h.ReportRide)

			authed.GET("/bookings/:id/receipt", h.GetBookingReceiptPDF)

			reports := authed.Group("/reports")
			reports.Use(middleware.RequireModerator())
			reports.POST("/:id/credit", h.CreditDriverFromReport)
		}
	}

	return r
}
