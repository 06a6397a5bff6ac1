package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/domain/models"
	"github.com/kisanpay/milkledger/internal/service/auth"
)

const dateLayout = "2006-01-02"

// respondError maps the error taxonomy onto HTTP statuses. DuplicateSlot gets
// its own status and message so clients can show "already recorded" instead
// of a generic failure.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrDuplicateSlot):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "an entry for this customer on this date and shift already exists"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "record not found"})
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
	case errors.Is(err, auth.ErrAdminExists):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "an admin account already exists"})
	default:
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "server error"})
	}
}

// formatSummary renders a settlement summary with exactly two decimal places.
// The calculator works on full-precision values; formatting happens only here
// at the presentation boundary.
func formatSummary(summary models.SettlementSummary) gin.H {
	return gin.H{
		"totalMilk":   fmt.Sprintf("%.2f", summary.TotalMilk),
		"totalAmount": fmt.Sprintf("%.2f", summary.TotalAmount),
		"totalPaid":   fmt.Sprintf("%.2f", summary.TotalPaid),
		"balance":     fmt.Sprintf("%.2f", summary.Balance),
	}
}

// parseDateParam accepts a calendar date or a full RFC 3339 timestamp.
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, models.InvalidFieldError("date", "must be YYYY-MM-DD or RFC 3339")
}
