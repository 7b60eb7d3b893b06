package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/karantec/EcommerceMern/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// httpStatus maps the business error taxonomy to status codes. Unknown
// errors are server faults and must not leak details to the client.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMalformedInput),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrOrderNotPaid),
		errors.Is(err, service.ErrOrderAlreadyPaid),
		errors.Is(err, service.ErrOrderCancelled),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrAmountMismatch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(c echo.Context, err error) error {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Path()).Msg("Internal error")
		return c.JSON(status, map[string]string{"error": "internal server error"})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
