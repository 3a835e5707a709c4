package httpapi

import (
	"errors"
	"net/http"

	"barefoot/internal/service"
	"barefoot/pkg/logger"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "An internal server error has occurred."

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors map[string][]string `json:"errors"`
}

// writeError maps service errors to responses. validationStatus is used for
// field errors, since post and auth routes answer them differently.
func writeError(c *gin.Context, err error, validationStatus int) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(validationStatus, validationResponse{Errors: verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, service.ErrDuplicateIdentity):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "email is already registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, service.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: internalErrorMessage})
	}
}
