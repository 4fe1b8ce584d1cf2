package response

import (
	"ctchen222/Task-Tracker/internal/api/service"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceError writes the response for an error returned by the service layer.
// Internal failures are logged and answered with a generic message.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConflict):
		ErrorResponse(c, http.StatusConflict, service.ErrConflict.Error())
	case errors.Is(err, service.ErrUnauthorized):
		Unauthorized(c, service.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, service.ErrNotFound.Error())
	case errors.Is(err, service.ErrInvalidInput):
		ErrorResponse(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		ErrorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

// Unauthorized writes a 401 with the bearer challenge header.
func Unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	ErrorResponse(c, http.StatusUnauthorized, message)
}
