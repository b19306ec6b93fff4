package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/freelancedesk/assistant"
	"github.com/yourusername/freelancedesk/logger"
	"github.com/yourusername/freelancedesk/middleware"
	"github.com/yourusername/freelancedesk/models"
	"github.com/yourusername/freelancedesk/records"
	"github.com/yourusername/freelancedesk/store"
	"go.uber.org/zap"
)

// respondError maps domain errors onto HTTP statuses. Unknown errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, records.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, assistant.ErrUpstream):
		logger.FromGin(c).Warn("assistant upstream failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant is unavailable, try again later"})
	default:
		logger.FromGin(c).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// owner reads the authenticated user id, answering 401 when it is missing.
func owner(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// target reads the owner and the :id path parameter.
func target(c *gin.Context) (id, userID uint, ok bool) {
	userID, ok = owner(c)
	if !ok {
		return 0, 0, false
	}
	parsed, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || parsed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, 0, false
	}
	return uint(parsed), userID, true
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func respondDeleted(c *gin.Context, ok bool, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, store.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
