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

// BulkMessageAction is the payload of message triage actions
type BulkMessageAction struct {
	IDs    []string `json:"ids" form:"ids"`
	Action string   `json:"action" form:"action"`
}

func messageFilters(c echo.Context) services.MessageFilters {
	from, to := dateRange(c)
	return services.MessageFilters{
		Search:      c.QueryParam("search"),
		State:       c.QueryParam("state"),
		ContactType: c.QueryParam("contact_type"),
		DateFrom:    from,
		DateTo:      to,
	}
}

// ListContactMessagesHandler returns filtered messages with triage counts
func ListContactMessagesHandler(c echo.Context) error {
	page, limit := pageParams(c, services.StaffPageSize)
	messages, total, err := services.ListContactMessages(db.DB, messageFilters(c), page, limit)
	if err != nil {
		return serviceError(err, "Failed to fetch messages")
	}
	counts, err := services.CountMessages(db.DB)
	if err != nil {
		return serviceError(err, "Failed to fetch messages")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":          messages,
		"counts":        counts,
		"contact_types": models.GetContactTypes(),
		"pagination": Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: services.TotalPages(total, limit),
		},
	})
}

// GetContactMessageHandler returns a message and marks it read
func GetContactMessageHandler(c echo.Context) error {
	msg, err := services.GetContactMessageForStaff(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to retrieve message")
	}
	return c.JSON(http.StatusOK, msg)
}

// TriageContactMessagesHandler applies read, unread or replied to the selected messages.
// On /:id routes the action comes from the path and the id list defaults to that message.
func TriageContactMessagesHandler(c echo.Context) error {
	var body BulkMessageAction
	if err := c.Bind(&body); err != nil {
		return badRequest("Invalid request body")
	}
	if id := c.Param("id"); id != "" && len(body.IDs) == 0 {
		body.IDs = []string{id}
	}
	if action := c.Param("action"); action != "" {
		body.Action = action
	}

	result, err := services.TriageMessages(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), body.IDs, services.TriageAction(body.Action))
	if err != nil {
		return serviceError(err, "Failed to update messages")
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteContactMessageHandler removes a message
func DeleteContactMessageHandler(c echo.Context) error {
	if err := services.DeleteContactMessage(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return serviceError(err, "Failed to delete message")
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportContactMessagesHandler downloads the filtered messages as a spreadsheet
func ExportContactMessagesHandler(c echo.Context) error {
	buf, err := services.ExportContactMessages(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), messageFilters(c))
	if err != nil {
		return serviceError(err, "Failed to export messages")
	}
	filename := "contact_messages_" + time.Now().Format("20060102_150405") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, services.XLSXContentType, buf.Bytes())
}
