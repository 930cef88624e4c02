package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/damacus/s3-browser/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// backendError maps a storage error onto the HTTP status shown to the user.
// Unclassified failures become 502 and are logged by HTTPErrorHandler.
func backendError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, services.ErrAccessDenied):
		return echo.NewHTTPError(http.StatusForbidden, "Access denied").SetInternal(err)
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadGateway, "Storage backend unavailable").SetInternal(err)
}

// HTTPErrorHandler renders the error page and logs server side failures.
func HTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he, ok := err.(*echo.HTTPError)
		if !ok {
			he = echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
		}

		message := http.StatusText(he.Code)
		switch m := he.Message.(type) {
		case nil:
		case string:
			if m != "" {
				message = m
			}
		default:
			message = fmt.Sprint(m)
		}

		if he.Code >= http.StatusInternalServerError {
			entry := logger.WithFields(logrus.Fields{
				"status":     he.Code,
				"method":     c.Request().Method,
				"uri":        c.Request().RequestURI,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			})
			if he.Internal != nil {
				entry = entry.WithError(he.Internal)
			}
			entry.Error(message)
		}

		var renderErr error
		if c.Request().Method == http.MethodHead {
			renderErr = c.NoContent(he.Code)
		} else {
			renderErr = c.Render(he.Code, "error", map[string]interface{}{
				"Status":     he.Code,
				"StatusText": http.StatusText(he.Code),
				"Message":    message,
			})
		}
		if renderErr != nil && !c.Response().Committed {
			_ = c.String(he.Code, message)
		}
	}
}
