package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/prog-Noon/rakaizfoundation/metrics"

	"github.com/labstack/echo/v4"
)

// Metrics records request count and latency per route template
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			metrics.RecordHTTPRequest(c.Request().Method, endpoint, status, time.Since(start))
			return err
		}
	}
}
