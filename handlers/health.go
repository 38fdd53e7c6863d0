package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/prog-Noon/rakaizfoundation/db"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the database answers a ping
func HealthHandler(c echo.Context) error {
	if db.DB == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "not initialized"})
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}
