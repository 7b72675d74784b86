package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hanbit-systems/netstock/internal/domain/models"
)

// respondError maps a service error to an HTTP status. Domain errors carry
// their message to the client; anything unexpected is logged with its cause
// and surfaced as the same opaque body regardless of what failed.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnitNotFound),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateName),
		errors.Is(err, models.ErrDuplicateIP),
		errors.Is(err, models.ErrDuplicateItem):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrInvalidIPFormat),
		errors.Is(err, models.ErrMissingIP),
		errors.Is(err, models.ErrPrimaryUserNotFound),
		errors.Is(err, models.ErrInvalidLocation),
		errors.Is(err, models.ErrInvalidField),
		errors.Is(err, models.ErrInvalidFilename),
		errors.Is(err, models.ErrHeaderNotFound),
		errors.Is(err, models.ErrHeaderValidation),
		errors.Is(err, models.ErrNoValidItems):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
