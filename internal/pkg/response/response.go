// internal/pkg/response/response.go
package response

import (
	"math"
	"net/http"
	"strconv"

	xerrors "leadhub-service/internal/pkg/errors"
	"leadhub-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	// Abort FIRST before writing response
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// FromError maps an application error onto the HTTP surface: status code,
// message, and structured detail where the error carries it (field
// failures, retry-after).
func FromError(c *gin.Context, err error) {
	if invalid, ok := xerrors.AsValidation(err); ok {
		Error(c, http.StatusBadRequest, "invalid input", err, map[string]interface{}{
			"fields": invalid.Fields,
		})
		return
	}

	if locked, ok := xerrors.AsAccountLocked(err); ok {
		retryAfter := retryAfterSeconds(locked.RetryAfter.Seconds())
		c.Header("Retry-After", retryAfter)
		Error(c, http.StatusLocked, "account temporarily locked", err, map[string]interface{}{
			"retry_after_seconds": int(math.Ceil(locked.RetryAfter.Seconds())),
		})
		return
	}

	if limited, ok := xerrors.AsRateLimited(err); ok {
		retryAfter := retryAfterSeconds(limited.RetryAfter.Seconds())
		c.Header("Retry-After", retryAfter)
		Error(c, http.StatusTooManyRequests, "too many requests", err, map[string]interface{}{
			"retry_after_seconds": int(math.Ceil(limited.RetryAfter.Seconds())),
		})
		return
	}

	switch {
	case xerrors.Is(err, xerrors.ErrUnauthorized),
		xerrors.Is(err, jwt.ErrExpired),
		xerrors.Is(err, jwt.ErrMalformed):
		Error(c, http.StatusUnauthorized, "unauthorized", err)
	case xerrors.Is(err, xerrors.ErrForbidden):
		Error(c, http.StatusForbidden, "forbidden", err)
	case xerrors.Is(err, xerrors.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", err)
	case xerrors.Is(err, xerrors.ErrCodeExpired):
		Error(c, http.StatusGone, "verification code expired", err)
	case xerrors.Is(err, xerrors.ErrCodeAlreadyUsed):
		Error(c, http.StatusConflict, "verification code already used", err)
	case xerrors.Is(err, xerrors.ErrAttemptsExceeded):
		Error(c, http.StatusTooManyRequests, "verification attempts exceeded", err)
	case xerrors.Is(err, xerrors.ErrCodeInvalid):
		Error(c, http.StatusBadRequest, "verification code invalid", err)
	case xerrors.Is(err, xerrors.ErrDeliveryFailure):
		Error(c, http.StatusBadGateway, "failed to deliver verification code", err)
	default:
		// Don't leak internals
		Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

func retryAfterSeconds(seconds float64) string {
	n := int(math.Ceil(seconds))
	if n < 1 {
		n = 1
	}
	return strconv.Itoa(n)
}
