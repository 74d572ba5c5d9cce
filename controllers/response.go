package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"conference-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func errorJSON(c *gin.Context, status int, message string, code string) {
	body := gin.H{"error": message, "timestamp": time.Now().UTC().Format(time.RFC3339)}
	if code != "" {
		body["code"] = code
	}
	c.AbortWithStatusJSON(status, body)
}

// respondError maps service errors onto status codes. Unknown errors are
// logged and, in production, reported without detail.
func (api *API) respondError(c *gin.Context, err error, fallback string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		errorJSON(c, http.StatusBadRequest, ve.Message, string(ve.Kind))
	case errors.Is(err, services.ErrAbstractNotFound):
		errorJSON(c, http.StatusNotFound, "Abstract not found", "")
	case errors.Is(err, services.ErrReviewNotFound):
		errorJSON(c, http.StatusNotFound, "Review not found", "")
	case errors.Is(err, services.ErrDuplicateReview):
		errorJSON(c, http.StatusBadRequest, "You have already reviewed this abstract", "duplicate_review")
	case errors.Is(err, services.ErrInvalidStatus):
		errorJSON(c, http.StatusBadRequest, "Invalid status", "invalid_status")
	case errors.Is(err, services.ErrEmptyIDSet):
		errorJSON(c, http.StatusBadRequest, "IDs array is required", "empty_ids")
	case errors.Is(err, services.ErrBulkTooLarge):
		errorJSON(c, http.StatusBadRequest, "Too many IDs in a single request", "bulk_too_large")
	case errors.Is(err, services.ErrInvalidBulkAction):
		errorJSON(c, http.StatusBadRequest, "Invalid action", "invalid_action")
	case errors.Is(err, services.ErrInvalidCredentials):
		errorJSON(c, http.StatusUnauthorized, "Invalid email or password", "")
	case errors.Is(err, services.ErrTimeout):
		api.Log.Warn(fallback, zap.Error(err), zap.String("path", c.FullPath()))
		errorJSON(c, http.StatusGatewayTimeout, "Request timed out", "timeout")
	default:
		api.Log.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
		message := "Internal server error"
		if !api.Production {
			message = fallback + ": " + err.Error()
		}
		errorJSON(c, http.StatusInternalServerError, message, "")
	}
}

func badRequest(c *gin.Context, message string) {
	errorJSON(c, http.StatusBadRequest, message, "")
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

// queryAlias reads name, then the snake_case alias, then fallback.
func queryAlias(c *gin.Context, name, alias, fallback string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	if v := c.Query(alias); v != "" {
		return v
	}
	return fallback
}

// changedBy is the admin email stored on audit rows.
func changedBy(c *gin.Context) string {
	if email := c.GetString("email"); email != "" {
		return email
	}
	return "admin"
}
