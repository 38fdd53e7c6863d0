package handlers

import (
	"net/http"

	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/middleware"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services"

	"github.com/labstack/echo/v4"
)

// Staff catalog endpoints exchange the stored per-locale columns as-is.

// ListStaffServicesHandler returns services for the staff area, active or not
func ListStaffServicesHandler(c echo.Context) error {
	page, limit := pageParams(c, services.StaffPageSize)
	filters := services.StaffServiceFilters{
		Search:     c.QueryParam("search"),
		CategoryID: c.QueryParam("category"),
		Status:     c.QueryParam("status"),
	}
	list, total, err := services.ListServicesForStaff(db.DB, filters, page, limit)
	if err != nil {
		return serviceError(err, "Failed to fetch services")
	}
	return listResponse(c, list, page, limit, total)
}

// GetStaffServiceHandler returns a service with its live request counts
func GetStaffServiceHandler(c echo.Context) error {
	service, err := services.GetServiceForStaff(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to retrieve service")
	}
	counts, err := services.GetServiceRequestCounts(db.DB, service.ID)
	if err != nil {
		return serviceError(err, "Failed to retrieve service")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service":        service,
		"request_counts": counts,
	})
}

// CreateServiceHandler adds a service
func CreateServiceHandler(c echo.Context) error {
	service := models.NewService()
	if err := c.Bind(service); err != nil {
		return badRequest("Invalid request body")
	}
	if err := services.CreateService(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), service); err != nil {
		return serviceError(err, "Failed to create service")
	}
	return c.JSON(http.StatusCreated, service)
}

// UpdateServiceHandler replaces a service's editable fields
func UpdateServiceHandler(c echo.Context) error {
	var input models.Service
	if err := c.Bind(&input); err != nil {
		return badRequest("Invalid request body")
	}
	service, err := services.UpdateService(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id"), &input)
	if err != nil {
		return serviceError(err, "Failed to update service")
	}
	return c.JSON(http.StatusOK, service)
}

// DeleteServiceHandler removes a service that has no requests
func DeleteServiceHandler(c echo.Context) error {
	if err := services.DeleteService(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return serviceError(err, "Failed to delete service")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListStaffServiceCategoriesHandler returns every service category
func ListStaffServiceCategoriesHandler(c echo.Context) error {
	categories, err := services.ListServiceCategoriesForStaff(db.DB)
	if err != nil {
		return serviceError(err, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": categories})
}

// SaveServiceCategoryHandler creates a category, or updates it on /:id routes
func SaveServiceCategoryHandler(c echo.Context) error {
	id := c.Param("id")
	category := &models.ServiceCategory{}
	if id == "" {
		category = models.NewServiceCategory()
	}
	if err := c.Bind(category); err != nil {
		return badRequest("Invalid request body")
	}
	saved, err := services.SaveServiceCategory(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), id, category)
	if err != nil {
		return serviceError(err, "Failed to save category")
	}
	return c.JSON(savedStatus(id), saved)
}

// DeleteServiceCategoryHandler removes a service category
func DeleteServiceCategoryHandler(c echo.Context) error {
	if err := services.DeleteServiceCategory(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return serviceError(err, "Failed to delete category")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListStaffNewsHandler returns articles for the staff area, drafts included
func ListStaffNewsHandler(c echo.Context) error {
	page, limit := pageParams(c, services.StaffPageSize)
	filters := services.StaffNewsFilters{
		Search:     c.QueryParam("search"),
		CategoryID: c.QueryParam("category"),
		Status:     c.QueryParam("status"),
	}
	list, total, err := services.ListNewsForStaff(db.DB, filters, page, limit)
	if err != nil {
		return serviceError(err, "Failed to fetch news")
	}
	return listResponse(c, list, page, limit, total)
}

// GetStaffNewsHandler returns one article, published or not
func GetStaffNewsHandler(c echo.Context) error {
	news, err := services.GetNewsForStaff(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to retrieve article")
	}
	return c.JSON(http.StatusOK, news)
}

// CreateNewsHandler adds an article authored by the current staff member
func CreateNewsHandler(c echo.Context) error {
	news := models.NewNews()
	if err := c.Bind(news); err != nil {
		return badRequest("Invalid request body")
	}
	if err := services.CreateNews(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), news); err != nil {
		return serviceError(err, "Failed to create article")
	}
	return c.JSON(http.StatusCreated, news)
}

// UpdateNewsHandler replaces an article's editable fields
func UpdateNewsHandler(c echo.Context) error {
	var input models.News
	if err := c.Bind(&input); err != nil {
		return badRequest("Invalid request body")
	}
	news, err := services.UpdateNews(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id"), &input)
	if err != nil {
		return serviceError(err, "Failed to update article")
	}
	return c.JSON(http.StatusOK, news)
}

// DeleteNewsHandler removes an article
func DeleteNewsHandler(c echo.Context) error {
	if err := services.DeleteNews(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return serviceError(err, "Failed to delete article")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListStaffNewsCategoriesHandler returns every news category
func ListStaffNewsCategoriesHandler(c echo.Context) error {
	categories, err := services.ListNewsCategoriesForStaff(db.DB)
	if err != nil {
		return serviceError(err, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": categories})
}

// SaveNewsCategoryHandler creates a news category, or updates it on /:id routes
func SaveNewsCategoryHandler(c echo.Context) error {
	id := c.Param("id")
	category := &models.NewsCategory{}
	if id == "" {
		category = models.NewNewsCategory()
	}
	if err := c.Bind(category); err != nil {
		return badRequest("Invalid request body")
	}
	saved, err := services.SaveNewsCategory(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), id, category)
	if err != nil {
		return serviceError(err, "Failed to save category")
	}
	return c.JSON(savedStatus(id), saved)
}

// DeleteNewsCategoryHandler removes an empty news category
func DeleteNewsCategoryHandler(c echo.Context) error {
	if err := services.DeleteNewsCategory(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return serviceError(err, "Failed to delete category")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListStaffTeamHandler returns every team member
func ListStaffTeamHandler(c echo.Context) error {
	members, err := services.ListTeamMembersForStaff(db.DB, c.QueryParam("search"))
	if err != nil {
		return serviceError(err, "Failed to fetch team")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": members})
}

// SaveTeamMemberHandler creates a team member, or updates one on /:id routes
func SaveTeamMemberHandler(c echo.Context) error {
	id := c.Param("id")
	member := &models.TeamMember{}
	if id == "" {
		member = models.NewTeamMember()
	}
	if err := c.Bind(member); err != nil {
		return badRequest("Invalid request body")
	}
	saved, err := services.SaveTeamMember(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), id, member)
	if err != nil {
		return serviceError(err, "Failed to save team member")
	}
	return c.JSON(savedStatus(id), saved)
}

// DeleteTeamMemberHandler removes a team member
func DeleteTeamMemberHandler(c echo.Context) error {
	if err := services.DeleteTeamMember(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return serviceError(err, "Failed to delete team member")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetStaffSiteSettingsHandler returns the stored settings with every locale
func GetStaffSiteSettingsHandler(c echo.Context) error {
	settings, err := services.GetSiteSettings(db.DB)
	if err != nil {
		return serviceError(err, "Failed to load site settings")
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSiteSettingsHandler replaces the site settings; superusers only
func UpdateSiteSettingsHandler(c echo.Context) error {
	var input models.SiteSettings
	if err := c.Bind(&input); err != nil {
		return badRequest("Invalid request body")
	}
	settings, err := services.UpdateSiteSettings(db.DB, middleware.GetPrincipal(c), middleware.GetAuditContext(c), &input)
	if err != nil {
		return serviceError(err, "Failed to update site settings")
	}
	return c.JSON(http.StatusOK, settings)
}

func savedStatus(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}
