package handlers

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float32 `xml:"priority,omitempty"`
}

type SitemapURLSet struct {
	XMLName string       `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// GetSitemapHandler generates a dynamic XML sitemap
func GetSitemapHandler(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)
	baseURL := cfg.AppURL

	urls := []SitemapURL{
		{Loc: baseURL + "/", ChangeFreq: "weekly", Priority: 1.0},
		{Loc: baseURL + "/about", ChangeFreq: "monthly", Priority: 0.8},
		{Loc: baseURL + "/services", ChangeFreq: "weekly", Priority: 0.9},
		{Loc: baseURL + "/news", ChangeFreq: "daily", Priority: 0.9},
		{Loc: baseURL + "/team", ChangeFreq: "monthly", Priority: 0.6},
		{Loc: baseURL + "/contact", ChangeFreq: "monthly", Priority: 0.8},
	}

	var svcs []models.Service
	if err := db.DB.Select("id", "updated_at").Where("is_active = ?", true).Order("sort_order ASC").Find(&svcs).Error; err != nil {
		// Static pages are still served
		logging.Log.Error("Failed to fetch services for sitemap", zap.Error(err))
	}
	for _, s := range svcs {
		urls = append(urls, SitemapURL{
			Loc:        baseURL + "/services/" + s.ID,
			ChangeFreq: "monthly",
			Priority:   0.7,
			LastMod:    s.UpdatedAt.Format(time.RFC3339),
		})
	}

	var articles []models.News
	if err := db.DB.Select("id", "updated_at").Where("is_published = ?", true).Order("published_at DESC").Find(&articles).Error; err != nil {
		logging.Log.Error("Failed to fetch news for sitemap", zap.Error(err))
	}
	for _, n := range articles {
		urls = append(urls, SitemapURL{
			Loc:        baseURL + "/news/" + n.ID,
			ChangeFreq: "weekly",
			Priority:   0.6,
			LastMod:    n.UpdatedAt.Format(time.RFC3339),
		})
	}

	urlSet := SitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationXML)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}

	encoder := xml.NewEncoder(c.Response().Writer)
	encoder.Indent("", "  ")
	return encoder.Encode(urlSet)
}
