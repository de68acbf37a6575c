package handlers

import (
	"net/http"
	"time"

	"rideshare/internal/analytics"
	intconfig "rideshare/internal/config"
	"rideshare/internal/http/middleware"
	"rideshare/internal/notify"

	"github.com/gin-gonic/gin"
)

var (
	jwtSecret    = []byte("super-secret-key-change-me")
	confirmTTL   = 72 * time.Hour
	analyticsLog *analytics.Log
	notifier     notify.Sender = notify.LogSender{}
)

// Configure wires handler-level collaborators once at startup.
func Configure(env intconfig.Env, log *analytics.Log, sender notify.Sender) {
	if env.JWTSecret != "" {
		jwtSecret = []byte(env.JWTSecret)
	}
	if env.ConfirmTTL > 0 {
		confirmTTL = env.ConfirmTTL
	}
	analyticsLog = log
	if sender != nil {
		notifier = sender
	}
}

// RespondError sends a standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}
