package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/judgequeue/judgequeue/pkg/apperrors"
)

// mapError maps a core-layer error to an HTTP error response.
func mapError(err error) *echo.HTTPError {
	var validErr *apperrors.ValidationError
	if errors.As(err, &validErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validErr.Error())
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}

	var provErr *apperrors.ProviderError
	if errors.As(err, &provErr) {
		if provErr.Transient {
			return echo.NewHTTPError(http.StatusGatewayTimeout, provErr.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, provErr.Error())
	}

	var storeErr *apperrors.StoreError
	if errors.As(err, &storeErr) {
		slog.Error("store error", "op", storeErr.Op, "error", storeErr.Err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	slog.Error("unexpected error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
