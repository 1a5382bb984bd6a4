package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reelctl/internal/services"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSemantic), errors.Is(err, services.ErrMedia):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrTransport), errors.Is(err, services.ErrTimeout):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": services.Kind(err)})
}

func badRequest(c *gin.Context, message string) {
	writeError(c, services.Wrap(services.ErrValidation, "api", "", message, nil))
}

func notConfigured(c *gin.Context, what string) {
	writeError(c, services.Wrap(services.ErrConfiguration, "api", "", what+" is not configured", nil))
}
