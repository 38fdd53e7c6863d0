package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/middleware"
	"github.com/prog-Noon/rakaizfoundation/services"

	"github.com/labstack/echo/v4"
)

const dashboardMonths = 12

// DashboardStatsHandler returns the point-in-time dashboard counts
func DashboardStatsHandler(c echo.Context) error {
	stats, err := services.GetDashboardStats(db.DB, time.Now())
	if err != nil {
		return serviceError(err, "Failed to load dashboard")
	}
	return c.JSON(http.StatusOK, stats)
}

// DashboardSeriesHandler returns the daily (?days=7|30) and monthly series of ?metric=
func DashboardSeriesHandler(c echo.Context) error {
	metric := c.QueryParam("metric")
	if metric == "" {
		metric = services.MetricRequests
	}
	days := 7
	if v := c.QueryParam("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (n != 7 && n != 30) {
			return badRequest("days must be 7 or 30")
		}
		days = n
	}

	now := time.Now()
	daily, err := services.GetDailySeries(db.DB, metric, days, now)
	if err != nil {
		return serviceError(err, "Failed to load series")
	}
	monthly, err := services.GetMonthlySeries(db.DB, metric, dashboardMonths, now)
	if err != nil {
		return serviceError(err, "Failed to load series")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"daily":   daily,
		"monthly": monthly,
	})
}

// DashboardActivityHandler returns the recent messages and requests
func DashboardActivityHandler(c echo.Context) error {
	limit := services.DefaultActivityLimit
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 50 {
		limit = l
	}
	items, err := services.GetRecentActivity(db.DB, limit, middleware.GetLocale(c))
	if err != nil {
		return serviceError(err, "Failed to load activity")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items})
}

// DashboardBreakdownHandler returns live request counts per service and catalog counts per category
func DashboardBreakdownHandler(c echo.Context) error {
	breakdown, err := services.GetServiceRequestBreakdown(db.DB)
	if err != nil {
		return serviceError(err, "Failed to load breakdown")
	}
	newsByCategory, err := services.GetNewsCountByCategory(db.DB)
	if err != nil {
		return serviceError(err, "Failed to load breakdown")
	}
	servicesByCategory, err := services.GetServiceCountByCategory(db.DB)
	if err != nil {
		return serviceError(err, "Failed to load breakdown")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"services":             breakdown,
		"news_by_category":     newsByCategory,
		"services_by_category": servicesByCategory,
	})
}
