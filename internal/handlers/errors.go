package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sluggram/backend/internal/apperror"
)

// toHTTPError translates domain errors into Echo HTTP errors. Malformed
// identifiers, wrong-type operations, full groups and oversize uploads are
// all client errors; anything unclassified is a server fault.
func toHTTPError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrInvalidArgument),
			errors.Is(err, apperror.ErrCapacityExceeded),
			errors.Is(err, apperror.ErrPayloadTooLarge):
			return echo.NewHTTPError(http.StatusBadRequest, appErr.Message)
		case errors.Is(err, apperror.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, appErr.Message)
		case errors.Is(err, apperror.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, appErr.Message)
		case errors.Is(err, apperror.ErrUnauthenticated):
			return echo.NewHTTPError(http.StatusUnauthorized, appErr.Message)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
