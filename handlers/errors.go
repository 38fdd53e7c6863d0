package handlers

import (
	"errors"
	"net/http"

	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// serviceError maps a service-layer error to the HTTP error returned to the client.
// Inactive and missing records share one generic 404.
func serviceError(err error, fallback string) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{"errors": verr.Fields})
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, "Permission denied")
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrServiceInUse),
		errors.Is(err, services.ErrCategoryInUse):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidTriageAction),
		errors.Is(err, services.ErrNoRecordsSelected),
		errors.Is(err, services.ErrUnknownMetric):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrSiteSettingsExists):
		logging.Log.Error("Site settings singleton violated", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
}

// HTTPErrorHandler logs server errors with their cause and renders every error as JSON
func HTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		fields := []zap.Field{
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
		}
		if he != nil && he.Internal != nil {
			fields = append(fields, zap.Error(he.Internal))
		} else {
			fields = append(fields, zap.Error(err))
		}
		logging.Log.Error("Request failed", fields...)

		e.DefaultHTTPErrorHandler(err, c)
	}
}

// badRequest is a 400 with a plain message
func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}
