package handlers

import (
	"net/http"
	"time"

	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/middleware"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services"

	"github.com/labstack/echo/v4"
)

// BulkRequestAction is the payload of bulk status and priority changes
type BulkRequestAction struct {
	IDs      []string `json:"ids" form:"ids"`
	Status   string   `json:"status" form:"status"`
	Priority string   `json:"priority" form:"priority"`
}

func requestFilters(c echo.Context) services.RequestFilters {
	from, to := dateRange(c)
	return services.RequestFilters{
		Search:    c.QueryParam("search"),
		Status:    c.QueryParam("status"),
		Priority:  c.QueryParam("priority"),
		Kind:      c.QueryParam("kind"),
		ServiceID: c.QueryParam("service"),
		DateFrom:  from,
		DateTo:    to,
	}
}

// ListServiceRequestsHandler returns filtered requests with per-status counts
func ListServiceRequestsHandler(c echo.Context) error {
	page, limit := pageParams(c, services.StaffPageSize)
	requests, total, err := services.ListServiceRequests(db.DB, requestFilters(c), page, limit)
	if err != nil {
		return serviceError(err, "Failed to fetch requests")
	}
	counts, err := services.CountRequestsByStatus(db.DB)
	if err != nil {
		return serviceError(err, "Failed to fetch requests")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":          requests,
		"status_counts": counts,
		"statuses":      models.GetRequestStatuses(),
		"priorities":    models.GetRequestPriorities(),
		"pagination": Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: services.TotalPages(total, limit),
		},
	})
}

// GetServiceRequestHandler returns one request with its audit history
func GetServiceRequestHandler(c echo.Context) error {
	req, err := services.GetServiceRequest(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to retrieve request")
	}
	history, err := services.GetResourceAuditHistory(db.DB, models.AuditResourceServiceRequest, req.ID)
	if err != nil {
		return serviceError(err, "Failed to retrieve request")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"request":             req,
		"allowed_transitions": allowedTransitions(req.Status),
		"history":             history,
	})
}

// allowedTransitions lists the statuses a request in status can move to
func allowedTransitions(status string) []string {
	allowed := []string{}
	for _, target := range models.GetRequestStatuses() {
		for _, source := range models.RequestStatusSources(target) {
			if source == status {
				allowed = append(allowed, target)
			}
		}
	}
	return allowed
}

// UpdateServiceRequestStatusHandler moves one request to a new status
func UpdateServiceRequestStatusHandler(c echo.Context) error {
	var body struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest("Invalid request body")
	}

	req, err := services.TransitionRequest(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id"), body.Status, time.Now())
	if err != nil {
		return serviceError(err, "Failed to update status")
	}
	return c.JSON(http.StatusOK, req)
}

// BulkServiceRequestStatusHandler moves the selected requests to a new status
func BulkServiceRequestStatusHandler(c echo.Context) error {
	var body BulkRequestAction
	if err := c.Bind(&body); err != nil {
		return badRequest("Invalid request body")
	}

	result, err := services.TransitionRequests(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), body.IDs, body.Status, time.Now())
	if err != nil {
		return serviceError(err, "Failed to update requests")
	}
	return c.JSON(http.StatusOK, result)
}

// BulkServiceRequestPriorityHandler sets the priority of the selected requests
func BulkServiceRequestPriorityHandler(c echo.Context) error {
	var body BulkRequestAction
	if err := c.Bind(&body); err != nil {
		return badRequest("Invalid request body")
	}
	if len(body.IDs) == 0 && c.Param("id") != "" {
		body.IDs = []string{c.Param("id")}
	}

	result, err := services.SetRequestPriority(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), body.IDs, body.Priority)
	if err != nil {
		return serviceError(err, "Failed to update priority")
	}
	return c.JSON(http.StatusOK, result)
}

// UpdateServiceRequestNotesHandler replaces the staff notes of a request
func UpdateServiceRequestNotesHandler(c echo.Context) error {
	var body struct {
		AdminNotes string `json:"admin_notes" form:"admin_notes"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest("Invalid request body")
	}

	req, err := services.UpdateRequestNotes(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id"), body.AdminNotes)
	if err != nil {
		return serviceError(err, "Failed to update notes")
	}
	return c.JSON(http.StatusOK, req)
}

// DeleteServiceRequestHandler removes a request
func DeleteServiceRequestHandler(c echo.Context) error {
	if err := services.DeleteServiceRequest(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return serviceError(err, "Failed to delete request")
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportServiceRequestsHandler downloads the filtered requests as a spreadsheet
func ExportServiceRequestsHandler(c echo.Context) error {
	buf, err := services.ExportServiceRequests(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), requestFilters(c), middleware.GetLocale(c))
	if err != nil {
		return serviceError(err, "Failed to export requests")
	}
	filename := "service_requests_" + time.Now().Format("20060102_150405") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, services.XLSXContentType, buf.Bytes())
}
