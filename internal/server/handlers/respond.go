package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopledger/internal/domain/models"
)

// respondError translates the domain error taxonomy into HTTP statuses and
// the {message, success} envelope. Unrecognized errors are treated as
// transient storage failures and hidden behind a 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrAmountMismatch),
		errors.Is(err, models.ErrOverpayment):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "success": false})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error(), "success": false})
	case errors.Is(err, models.ErrProductExists), errors.Is(err, models.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error(), "success": false})
	case errors.Is(err, models.ErrAuthFailed):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error(), "success": false})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error", "success": false})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message, "success": false})
}
