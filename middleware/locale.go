package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/i18n"

	"github.com/labstack/echo/v4"
)

const (
	// LocaleCookieName persists the visitor's explicit language choice
	LocaleCookieName = "lang"
	// ContextKeyLocale is the context key for the negotiated locale
	ContextKeyLocale = "locale"
)

// Locale middleware handles language detection and persistence.
// Priority:
// 1. Query param "lang" (sets cookie)
// 2. Cookie "lang"
// 3. Accept-Language header
// 4. Fallback locale
// Unsupported values are ignored and the next source is tried.
func Locale(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := normalizeLocale(c.QueryParam("lang"))
			if lang != "" {
				SetLanguageCookie(c, cfg, lang)
			} else if cookie, err := c.Cookie(LocaleCookieName); err == nil {
				lang = normalizeLocale(cookie.Value)
			}

			if lang == "" {
				lang = i18n.Negotiate(c.Request().Header.Get("Accept-Language"))
			}

			c.Set(ContextKeyLocale, lang)
			c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), lang)))
			c.Response().Header().Set("Content-Language", lang)

			return next(c)
		}
	}
}

func normalizeLocale(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if i18n.IsSupported(value) {
		return value
	}
	return ""
}

// SetLanguageCookie sets the language cookie for one year
func SetLanguageCookie(c echo.Context, cfg *config.Config, lang string) {
	cookie := &http.Cookie{
		Name:     LocaleCookieName,
		Value:    lang,
		Expires:  time.Now().Add(24 * 365 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg != nil && cfg.IsProduction(),
	}
	c.SetCookie(cookie)
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get(ContextKeyLocale).(string); ok && i18n.IsSupported(lang) {
		return lang
	}
	return i18n.Fallback()
}
