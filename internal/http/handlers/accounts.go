package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"rideshare/internal/http/middleware"
	"rideshare/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/accounts/me
func GetMyAccount(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	account, err := repositories.AccountRepo{}.GetByID(id.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondError(c, http.StatusNotFound, "account not found", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "account lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      account.ID,
		"balance": account.Balance.StringFixed(2),
	})
}
