package handlers

import (
	"net/http"

	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/services"

	"github.com/labstack/echo/v4"
)

// GetAuditLogsHandler returns filtered and paginated audit logs
func GetAuditLogsHandler(c echo.Context) error {
	page, limit := pageParams(c, services.StaffPageSize)
	from, to := dateRange(c)
	filters := services.AuditLogFilters{
		UserID:       c.QueryParam("user_id"),
		ResourceType: c.QueryParam("resource_type"),
		Action:       c.QueryParam("action"),
		DateFrom:     from,
		DateTo:       to,
	}

	logs, total, err := services.GetAuditLogs(db.DB, filters, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch audit logs")
	}
	return listResponse(c, logs, page, limit, total)
}

// GetResourceHistoryHandler returns the audit history for a specific resource
func GetResourceHistoryHandler(c echo.Context) error {
	logs, err := services.GetResourceAuditHistory(db.DB, c.Param("type"), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch history")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": logs})
}
