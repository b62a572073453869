package handlers

import (
	"errors"
	"log"
	"net/http"

	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// serviceError converts a service error into the HTTP error returned to the client.
// Unexpected errors are logged and reported without details.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrAlreadySetup),
		errors.Is(err, services.ErrNotConfigured):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	log.Printf("[API] %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "operation failed")
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}
