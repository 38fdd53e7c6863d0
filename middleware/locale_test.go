package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/i18n"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLocale(t *testing.T, req *http.Request) (echo.Context, *httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var fromRequestContext string
	handler := Locale(&config.Config{Environment: "development"})(func(c echo.Context) error {
		fromRequestContext = i18n.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return c, rec, fromRequestContext
}

func langCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == LocaleCookieName {
			return cookie
		}
	}
	return nil
}

func TestLocale(t *testing.T) {
	t.Run("PriorityQueryParam", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?lang=tr", nil)
		req.AddCookie(&http.Cookie{Name: LocaleCookieName, Value: "en"})
		c, rec, ctxLocale := runLocale(t, req)

		assert.Equal(t, "tr", GetLocale(c))
		assert.Equal(t, "tr", ctxLocale)
		cookie := langCookie(rec)
		require.NotNil(t, cookie)
		assert.Equal(t, "tr", cookie.Value)
		assert.Equal(t, "tr", rec.Header().Get("Content-Language"))
	})

	t.Run("PriorityCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: LocaleCookieName, Value: "en"})
		req.Header.Set("Accept-Language", "tr-TR")
		c, rec, _ := runLocale(t, req)

		assert.Equal(t, "en", GetLocale(c))
		assert.Nil(t, langCookie(rec))
	})

	t.Run("PriorityHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "en-GB,en;q=0.9,ar;q=0.5")
		c, _, _ := runLocale(t, req)
		assert.Equal(t, "en", GetLocale(c))
	})

	t.Run("UnsupportedQueryFallsThrough", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?lang=fr", nil)
		req.Header.Set("Accept-Language", "tr")
		c, rec, _ := runLocale(t, req)

		assert.Equal(t, "tr", GetLocale(c))
		assert.Nil(t, langCookie(rec))
	})

	t.Run("DefaultLanguage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c, _, _ := runLocale(t, req)
		assert.Equal(t, i18n.Fallback(), GetLocale(c))
	})

	t.Run("UnmatchedHeaderUsesFallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "ja-JP")
		c, _, _ := runLocale(t, req)
		assert.Equal(t, i18n.Fallback(), GetLocale(c))
	})
}

func TestGetLocaleWithoutMiddleware(t *testing.T) {
	c := echo.New().NewContext(nil, nil)
	assert.Equal(t, i18n.Fallback(), GetLocale(c))
}
