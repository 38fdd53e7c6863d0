package handlers

import (
	"net/http"

	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/middleware"
	"github.com/prog-Noon/rakaizfoundation/services"
	"github.com/prog-Noon/rakaizfoundation/i18n"

	"github.com/labstack/echo/v4"
)

// Home feed sizes
const (
	homeFeaturedNews = 3
	homeServices     = 6
	homeTeamMembers  = 4
)

// LocaleView describes one supported locale for language switchers
type LocaleView struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Current   bool   `json:"current"`
}

// LocalesHandler lists the supported locales and marks the negotiated one
func LocalesHandler(c echo.Context) error {
	current := middleware.GetLocale(c)
	locales := make([]LocaleView, 0, len(i18n.SupportedLocales))
	for _, code := range i18n.SupportedLocales {
		direction := "ltr"
		if i18n.IsRTL(code) {
			direction = "rtl"
		}
		locales = append(locales, LocaleView{
			Code:      code,
			Name:      i18n.DisplayName(code),
			Direction: direction,
			Current:   code == current,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"locale":   current,
		"fallback": i18n.Fallback(),
		"locales":  locales,
	})
}

// HomeHandler returns the home page feed
func HomeHandler(c echo.Context) error {
	locale := middleware.GetLocale(c)

	settings, err := services.GetSiteSettings(db.DB)
	if err != nil {
		return serviceError(err, "Failed to load site settings")
	}
	featured, err := services.FeaturedNews(db.DB, homeFeaturedNews)
	if err != nil {
		return serviceError(err, "Failed to load news")
	}
	svcs, _, err := services.ListActiveServices(db.DB, services.ServiceFilters{}, 1, homeServices)
	if err != nil {
		return serviceError(err, "Failed to load services")
	}
	team, err := services.ListActiveTeamMembers(db.DB, "", homeTeamMembers)
	if err != nil {
		return serviceError(err, "Failed to load team")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"settings":      siteSettingsView(settings, locale),
		"featured_news": newsViews(featured, locale),
		"services":      serviceViews(svcs, locale),
		"team":          teamMemberViews(team, locale),
	})
}

// SiteSettingsHandler returns the resolved about page and contact details
func SiteSettingsHandler(c echo.Context) error {
	settings, err := services.GetSiteSettings(db.DB)
	if err != nil {
		return serviceError(err, "Failed to load site settings")
	}
	return c.JSON(http.StatusOK, siteSettingsView(settings, middleware.GetLocale(c)))
}

// ListServicesHandler returns one page of active services
func ListServicesHandler(c echo.Context) error {
	locale := middleware.GetLocale(c)
	page, limit := pageParams(c, services.DefaultPageSize)
	filters := services.ServiceFilters{
		Search:       c.QueryParam("search"),
		CategoryID:   c.QueryParam("category"),
		FeaturedOnly: queryBool(c, "featured"),
		FreeOnly:     queryBool(c, "free"),
	}

	list, total, err := services.ListActiveServices(db.DB, filters, page, limit)
	if err != nil {
		return serviceError(err, "Failed to fetch services")
	}
	return listResponse(c, serviceViews(list, locale), page, limit, total)
}

// ServiceDetailHandler returns an active service, counting the view
func ServiceDetailHandler(c echo.Context) error {
	locale := middleware.GetLocale(c)
	service, err := services.ViewService(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to retrieve service")
	}

	related, _, err := services.ListActiveServices(db.DB, services.ServiceFilters{}, 1, homeServices)
	if err != nil {
		return serviceError(err, "Failed to retrieve service")
	}
	others := make([]ServiceView, 0, len(related))
	for i := range related {
		if related[i].ID != service.ID {
			others = append(others, serviceView(&related[i], locale, false))
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"service":        serviceView(service, locale, true),
		"other_services": others,
	})
}

// ListServiceCategoriesHandler returns the active service categories
func ListServiceCategoriesHandler(c echo.Context) error {
	locale := middleware.GetLocale(c)
	categories, err := services.ListActiveServiceCategories(db.DB)
	if err != nil {
		return serviceError(err, "Failed to fetch categories")
	}
	views := make([]*ServiceCategoryView, len(categories))
	for i := range categories {
		views[i] = serviceCategoryView(&categories[i], locale)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": views})
}

// ServicesByCategoryHandler lists the active services of an active category
func ServicesByCategoryHandler(c echo.Context) error {
	locale := middleware.GetLocale(c)
	page, limit := pageParams(c, services.DefaultPageSize)

	category, list, total, err := services.ListServicesByCategory(db.DB, c.Param("id"), page, limit)
	if err != nil {
		return serviceError(err, "Failed to fetch services")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"category": serviceCategoryView(category, locale),
		"data":     serviceViews(list, locale),
		"pagination": Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: services.TotalPages(total, limit),
		},
	})
}

// ListNewsHandler returns one page of published news
func ListNewsHandler(c echo.Context) error {
	locale := middleware.GetLocale(c)
	page, limit := pageParams(c, services.DefaultPageSize)
	filters := services.NewsFilters{
		Search:       c.QueryParam("search"),
		CategoryID:   c.QueryParam("category"),
		FeaturedOnly: queryBool(c, "featured"),
	}

	list, total, err := services.ListPublishedNews(db.DB, filters, page, limit)
	if err != nil {
		return serviceError(err, "Failed to fetch news")
	}
	return listResponse(c, newsViews(list, locale), page, limit, total)
}

// NewsDetailHandler returns a published article with related articles, counting the view
func NewsDetailHandler(c echo.Context) error {
	locale := middleware.GetLocale(c)
	news, err := services.ViewNews(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to retrieve article")
	}
	related, err := services.RelatedNews(db.DB, news, services.RelatedNewsLimit)
	if err != nil {
		return serviceError(err, "Failed to retrieve article")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"news":    newsView(news, locale, true),
		"related": newsViews(related, locale),
	})
}

// ListNewsCategoriesHandler returns the active news categories
func ListNewsCategoriesHandler(c echo.Context) error {
	locale := middleware.GetLocale(c)
	categories, err := services.ListActiveNewsCategories(db.DB)
	if err != nil {
		return serviceError(err, "Failed to fetch categories")
	}
	views := make([]*NewsCategoryView, len(categories))
	for i := range categories {
		views[i] = newsCategoryView(&categories[i], locale)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": views})
}

// NewsByCategoryHandler lists the published news of an active category
func NewsByCategoryHandler(c echo.Context) error {
	locale := middleware.GetLocale(c)
	page, limit := pageParams(c, services.DefaultPageSize)

	category, list, total, err := services.ListNewsByCategory(db.DB, c.Param("id"), page, limit)
	if err != nil {
		return serviceError(err, "Failed to fetch news")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"category": newsCategoryView(category, locale),
		"data":     newsViews(list, locale),
		"pagination": Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: services.TotalPages(total, limit),
		},
	})
}

// ListTeamHandler returns the active team members
func ListTeamHandler(c echo.Context) error {
	members, err := services.ListActiveTeamMembers(db.DB, c.QueryParam("search"), 0)
	if err != nil {
		return serviceError(err, "Failed to fetch team")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": teamMemberViews(members, middleware.GetLocale(c))})
}

// TeamMemberHandler returns an active team member with their bio
func TeamMemberHandler(c echo.Context) error {
	member, err := services.GetActiveTeamMember(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err, "Failed to retrieve team member")
	}
	return c.JSON(http.StatusOK, teamMemberView(member, middleware.GetLocale(c), true))
}
