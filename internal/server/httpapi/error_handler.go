package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/llave/internal/common"
	"github.com/dmitrijs2005/llave/internal/logging"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps the
// sentinel errors to deterministic status codes, logs unexpected errors
// internally and renders a consistent JSON envelope {"error": "<message>"}
// without leaking internal detail to the client.
func NewHTTPErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log logging.Logger, c echo.Context) (int, string) {
	// echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidCode):
		// which factor failed is never exposed
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrInvalidEmail),
		errors.Is(err, common.ErrWeakPassword),
		errors.Is(err, common.ErrNotConfigured):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateUser):
		return http.StatusConflict, err.Error()
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, common.ErrStoreUnavailable.Error()
	}

	// unexpected error: log the real cause, return a generic message
	log.Error(c.Request().Context(), "unhandled error",
		"error", err.Error(),
		"method", c.Request().Method,
		"path", c.Path(),
	)

	return http.StatusInternalServerError, "internal server error"
}
