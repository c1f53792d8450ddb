package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/circle/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps service errors onto HTTP statuses; anything unrecognized is logged and becomes a 500
func toHTTPError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrPostingTooFast):
		return echo.NewHTTPError(http.StatusTooManyRequests, "You can only post once per minute")
	case errors.Is(err, services.ErrAlreadyFollowing),
		errors.Is(err, services.ErrNotFollowing),
		errors.Is(err, services.ErrAlreadyDecided),
		errors.Is(err, services.ErrAlreadyVerified),
		errors.Is(err, services.ErrPendingRequest),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrBusy):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	slog.Error("request failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
