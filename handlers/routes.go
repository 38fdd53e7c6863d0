package handlers

import (
	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/metrics"
	"github.com/prog-Noon/rakaizfoundation/middleware"
	"github.com/prog-Noon/rakaizfoundation/services"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// RegisterRoutes installs the shared middleware and every route on e
func RegisterRoutes(e *echo.Echo, cfg *config.Config, verifier identity.Verifier, intake *services.IntakeService) {
	e.HTTPErrorHandler = HTTPErrorHandler(e)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Metrics())

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.Locale(cfg))

	e.GET("/health", HealthHandler)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/sitemap.xml", GetSitemapHandler)
	e.GET(services.MediaRoutePrefix+"*", ServeMediaHandler)

	// Public API
	api := e.Group("/api")
	api.Use(middleware.APIRateLimiter.Middleware())
	{
		api.GET("/locales", LocalesHandler)
		api.GET("/home", HomeHandler)
		api.GET("/settings", SiteSettingsHandler)

		api.GET("/services", ListServicesHandler)
		api.GET("/services/:id", ServiceDetailHandler)
		api.GET("/service-categories", ListServiceCategoriesHandler)
		api.GET("/service-categories/:id/services", ServicesByCategoryHandler)

		api.GET("/news", ListNewsHandler)
		api.GET("/news/:id", NewsDetailHandler)
		api.GET("/news-categories", ListNewsCategoriesHandler)
		api.GET("/news-categories/:id/news", NewsByCategoryHandler)

		api.GET("/team", ListTeamHandler)
		api.GET("/team/:id", TeamMemberHandler)
	}

	// Public intake forms
	forms := api.Group("/forms")
	forms.Use(middleware.PublicFormRateLimiter.Middleware())
	{
		forms.POST("/contact", SubmitFormHandler(intake, services.FormContact))
		forms.POST("/service-request", SubmitFormHandler(intake, services.FormServiceRequest))
		forms.POST("/appointment", SubmitFormHandler(intake, services.FormAppointment))
	}

	// Staff API (staff claim required)
	staff := e.Group("/api/staff")
	staff.Use(middleware.RequireStaff(verifier))
	staff.Use(middleware.AuditContext())
	staff.Use(middleware.StaffActivity())
	{
		staff.GET("/dashboard/stats", DashboardStatsHandler)
		staff.GET("/dashboard/series", DashboardSeriesHandler)
		staff.GET("/dashboard/activity", DashboardActivityHandler)
		staff.GET("/dashboard/breakdown", DashboardBreakdownHandler)

		staff.GET("/requests", ListServiceRequestsHandler)
		staff.GET("/requests/export", ExportServiceRequestsHandler)
		staff.POST("/requests/status", BulkServiceRequestStatusHandler)
		staff.POST("/requests/priority", BulkServiceRequestPriorityHandler)
		staff.GET("/requests/:id", GetServiceRequestHandler)
		staff.PUT("/requests/:id/status", UpdateServiceRequestStatusHandler)
		staff.PUT("/requests/:id/priority", BulkServiceRequestPriorityHandler)
		staff.PUT("/requests/:id/notes", UpdateServiceRequestNotesHandler)

		staff.GET("/messages", ListContactMessagesHandler)
		staff.GET("/messages/export", ExportContactMessagesHandler)
		staff.POST("/messages/triage", TriageContactMessagesHandler)
		staff.GET("/messages/:id", GetContactMessageHandler)
		staff.POST("/messages/:id/:action", TriageContactMessagesHandler)

		staff.POST("/media", UploadMediaHandler)

		staff.GET("/services", ListStaffServicesHandler)
		staff.POST("/services", CreateServiceHandler)
		staff.GET("/services/:id", GetStaffServiceHandler)
		staff.PUT("/services/:id", UpdateServiceHandler)
		staff.DELETE("/services/:id", DeleteServiceHandler)

		staff.GET("/service-categories", ListStaffServiceCategoriesHandler)
		staff.POST("/service-categories", SaveServiceCategoryHandler)
		staff.PUT("/service-categories/:id", SaveServiceCategoryHandler)
		staff.DELETE("/service-categories/:id", DeleteServiceCategoryHandler)

		staff.GET("/news", ListStaffNewsHandler)
		staff.POST("/news", CreateNewsHandler)
		staff.GET("/news/:id", GetStaffNewsHandler)
		staff.PUT("/news/:id", UpdateNewsHandler)
		staff.DELETE("/news/:id", DeleteNewsHandler)

		staff.GET("/news-categories", ListStaffNewsCategoriesHandler)
		staff.POST("/news-categories", SaveNewsCategoryHandler)
		staff.PUT("/news-categories/:id", SaveNewsCategoryHandler)
		staff.DELETE("/news-categories/:id", DeleteNewsCategoryHandler)

		staff.GET("/team", ListStaffTeamHandler)
		staff.POST("/team", SaveTeamMemberHandler)
		staff.PUT("/team/:id", SaveTeamMemberHandler)
		staff.DELETE("/team/:id", DeleteTeamMemberHandler)

		staff.GET("/settings", GetStaffSiteSettingsHandler)

		staff.GET("/audit-logs", GetAuditLogsHandler)
		staff.GET("/audit-logs/:type/:id", GetResourceHistoryHandler)
	}

	// Superuser-only routes
	admin := staff.Group("")
	admin.Use(middleware.RequireSuperuser())
	{
		admin.PUT("/settings", UpdateSiteSettingsHandler)
		admin.DELETE("/requests/:id", DeleteServiceRequestHandler)
		admin.DELETE("/messages/:id", DeleteContactMessageHandler)
	}
}
