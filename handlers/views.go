package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services"
	"github.com/prog-Noon/rakaizfoundation/i18n"

	"github.com/labstack/echo/v4"
)

// Public views carry values resolved for one locale; per-locale columns never leave the staff API.

type ServiceCategoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color"`
}

type ServiceView struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Excerpt        string               `json:"excerpt"`
	Description    string               `json:"description,omitempty"`
	Image          string               `json:"image,omitempty"`
	Icon           string               `json:"icon,omitempty"`
	Category       *ServiceCategoryView `json:"category,omitempty"`
	Duration       string               `json:"duration,omitempty"`
	TargetAudience string               `json:"target_audience,omitempty"`
	Prerequisites  string               `json:"prerequisites,omitempty"`
	Features       []string             `json:"features"`
	IsFree         bool                 `json:"is_free"`
	Cost           string               `json:"cost,omitempty"`
	IsFeatured     bool                 `json:"is_featured"`
	Views          int64                `json:"views"`
}

type NewsCategoryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NewsView struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Excerpt       string            `json:"excerpt"`
	Content       string            `json:"content,omitempty"`
	FeaturedImage string            `json:"featured_image,omitempty"`
	Category      *NewsCategoryView `json:"category,omitempty"`
	Author        string            `json:"author,omitempty"`
	PublishedAt   time.Time         `json:"published_at"`
	IsFeatured    bool              `json:"is_featured"`
	Views         int64             `json:"views"`
}

type TeamMemberView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Bio      string `json:"bio,omitempty"`
	Photo    string `json:"photo,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Facebook string `json:"facebook,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
}

type SiteSettingsView struct {
	Locale          string            `json:"locale"`
	Direction       string            `json:"direction"`
	SiteName        string            `json:"site_name"`
	Tagline         string            `json:"tagline"`
	About           string            `json:"about"`
	Vision          string            `json:"vision"`
	Mission         string            `json:"mission"`
	Address         string            `json:"address"`
	MetaDescription string            `json:"meta_description"`
	Logo            string            `json:"logo,omitempty"`
	Favicon         string            `json:"favicon,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Email           string            `json:"email,omitempty"`
	WhatsApp        string            `json:"whatsapp,omitempty"`
	Social          map[string]string `json:"social"`
	GoogleMapsEmbed string            `json:"google_maps_embed,omitempty"`
	AnalyticsID     string            `json:"google_analytics_id,omitempty"`
}

func serviceCategoryView(c *models.ServiceCategory, locale string) *ServiceCategoryView {
	if c == nil {
		return nil
	}
	return &ServiceCategoryView{
		ID:          c.ID,
		Name:        c.Name(locale),
		Description: c.Description(locale),
		Icon:        c.Icon,
		Color:       c.Color,
	}
}

// serviceView resolves a service; the full description is only included on detail pages
func serviceView(s *models.Service, locale string, detail bool) ServiceView {
	v := ServiceView{
		ID:             s.ID,
		Title:          s.Title(locale),
		Excerpt:        s.Excerpt(locale),
		Image:          services.MediaURL(s.Image),
		Icon:           s.Icon,
		Category:       serviceCategoryView(s.Category, locale),
		Duration:       s.Duration,
		TargetAudience: s.TargetAudience,
		Prerequisites:  s.Prerequisites,
		Features:       []string(s.Features),
		IsFree:         s.IsFree,
		Cost:           s.Cost,
		IsFeatured:     s.IsFeatured,
		Views:          s.Views,
	}
	if v.Features == nil {
		v.Features = []string{}
	}
	if detail {
		v.Description = s.Description(locale)
	}
	return v
}

func serviceViews(list []models.Service, locale string) []ServiceView {
	views := make([]ServiceView, len(list))
	for i := range list {
		views[i] = serviceView(&list[i], locale, false)
	}
	return views
}

func newsCategoryView(c *models.NewsCategory, locale string) *NewsCategoryView {
	if c == nil {
		return nil
	}
	return &NewsCategoryView{ID: c.ID, Name: c.Name(locale)}
}

func newsView(n *models.News, locale string, detail bool) NewsView {
	v := NewsView{
		ID:            n.ID,
		Title:         n.Title(locale),
		Excerpt:       n.Excerpt(locale),
		FeaturedImage: services.MediaURL(n.FeaturedImage),
		Category:      newsCategoryView(n.Category, locale),
		PublishedAt:   n.PublishedAt,
		IsFeatured:    n.IsFeatured,
		Views:         n.Views,
	}
	if n.Author != nil {
		v.Author = n.Author.DisplayName()
	}
	if detail {
		v.Content = n.Content(locale)
	}
	return v
}

func newsViews(list []models.News, locale string) []NewsView {
	views := make([]NewsView, len(list))
	for i := range list {
		views[i] = newsView(&list[i], locale, false)
	}
	return views
}

func teamMemberView(m *models.TeamMember, locale string, detail bool) TeamMemberView {
	v := TeamMemberView{
		ID:       m.ID,
		Name:     m.Name(locale),
		Position: m.Position(locale),
		Photo:    services.MediaURL(m.Photo),
		Email:    m.Email,
		Phone:    m.Phone,
		Facebook: m.Facebook,
		Linkedin: m.Linkedin,
	}
	if detail {
		v.Bio = m.Bio(locale)
	}
	return v
}

func teamMemberViews(list []models.TeamMember, locale string) []TeamMemberView {
	views := make([]TeamMemberView, len(list))
	for i := range list {
		views[i] = teamMemberView(&list[i], locale, false)
	}
	return views
}

func siteSettingsView(s *models.SiteSettings, locale string) SiteSettingsView {
	direction := "ltr"
	if i18n.IsRTL(locale) {
		direction = "rtl"
	}
	return SiteSettingsView{
		Locale:          locale,
		Direction:       direction,
		SiteName:        s.Localized("site_name", locale),
		Tagline:         s.Localized("tagline", locale),
		About:           s.Localized("about", locale),
		Vision:          s.Localized("vision", locale),
		Mission:         s.Localized("mission", locale),
		Address:         s.Localized("address", locale),
		MetaDescription: s.Localized("meta_description", locale),
		Logo:            services.MediaURL(s.Logo),
		Favicon:         services.MediaURL(s.Favicon),
		Phone:           s.Phone,
		Email:           s.Email,
		WhatsApp:        s.WhatsApp,
		Social: map[string]string{
			"facebook":  s.Facebook,
			"instagram": s.Instagram,
			"twitter":   s.Twitter,
			"linkedin":  s.Linkedin,
			"youtube":   s.Youtube,
		},
		GoogleMapsEmbed: s.GoogleMapsEmbed,
		AnalyticsID:     s.GoogleAnalyticsID,
	}
}

// Pagination is the paging block of list responses
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// listResponse renders a page of data with its pagination block
func listResponse(c echo.Context, data interface{}, page, limit int, total int64) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": data,
		"pagination": Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: services.TotalPages(total, limit),
		},
	})
}

// pageParams reads ?page= and ?limit=, falling back to def for the limit
func pageParams(c echo.Context, def int) (int, int) {
	page := 1
	limit := def
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}

// queryBool reads a boolean flag such as ?featured=true or ?free=1
func queryBool(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.QueryParam(name)))
	return err == nil && v
}

// dateRange parses ?date_from= and ?date_to= (YYYY-MM-DD); date_to includes the whole day
func dateRange(c echo.Context) (from, to *time.Time) {
	if v := c.QueryParam("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = &t
		}
	}
	if v := c.QueryParam("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			to = &end
		}
	}
	return from, to
}
