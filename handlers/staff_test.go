package handlers

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffRoutesRequireIdentity(t *testing.T) {
	s := newTestServer(t)

	t.Run("No token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/staff/requests", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Invalid token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/staff/requests", nil, "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Without staff claim", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/staff/requests", nil, token(t, plainPrincipal))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Staff user synced", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/requests", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var user models.User
		require.NoError(t, s.db.First(&user, "id = ?", staffPrincipal.Subject).Error)
		assert.Equal(t, staffPrincipal.Email, user.Email)
	})
}

func TestStaffRequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	service := createService(t, s.db, "استشارة", true)
	pending := createRequest(t, s.db, service.ID, models.RequestStatusPending)
	done := createRequest(t, s.db, service.ID, models.RequestStatusCompleted)

	t.Run("List with status counts", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/requests?status=pending", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode(t, rec)
		assert.Len(t, resp["data"], 1)
		counts := resp["status_counts"].(map[string]interface{})
		assert.Equal(t, float64(1), counts[models.RequestStatusPending])
		assert.Equal(t, float64(1), counts[models.RequestStatusCompleted])
	})

	t.Run("Detail lists allowed transitions", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/requests/"+pending.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		allowed := decode(t, rec)["allowed_transitions"].([]interface{})
		assert.ElementsMatch(t, []interface{}{"processing", "completed", "cancelled"}, allowed)
	})

	t.Run("Terminal status rejects transitions", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPut, "/api/staff/requests/"+done.ID+"/status", map[string]string{"status": "pending"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Unknown status", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPut, "/api/staff/requests/"+pending.ID+"/status", map[string]string{"status": "in_progress"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Bulk transition skips terminal records", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/requests/status", map[string]interface{}{
			"ids":    []string{pending.ID, done.ID},
			"status": models.RequestStatusProcessing,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, float64(1), resp["updated"])
		assert.Equal(t, float64(1), resp["skipped"])

		var reloaded models.ServiceRequest
		require.NoError(t, s.db.First(&reloaded, "id = ?", pending.ID).Error)
		assert.Equal(t, models.RequestStatusProcessing, reloaded.Status)
	})

	t.Run("Priority on one request", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPut, "/api/staff/requests/"+done.ID+"/priority", map[string]string{"priority": "urgent"})
		require.Equal(t, http.StatusOK, rec.Code)

		var reloaded models.ServiceRequest
		require.NoError(t, s.db.First(&reloaded, "id = ?", done.ID).Error)
		assert.Equal(t, models.RequestPriorityUrgent, reloaded.Priority)
	})

	t.Run("Notes", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPut, "/api/staff/requests/"+pending.ID+"/notes", map[string]string{"admin_notes": "Called back"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Called back", decode(t, rec)["admin_notes"])
	})

	t.Run("Export", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/requests/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, services.XLSXContentType, rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".xlsx")
		assert.NotZero(t, rec.Body.Len())
	})

	t.Run("Delete needs a superuser", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodDelete, "/api/staff/requests/"+done.ID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.asSuperuser(t, http.MethodDelete, "/api/staff/requests/"+done.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		var count int64
		s.db.Model(&models.ServiceRequest{}).Where("id = ?", done.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Audit trail", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/audit-logs?resource_type="+models.AuditResourceServiceRequest, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decode(t, rec)["data"])
	})
}

func TestStaffMessageTriage(t *testing.T) {
	s := newTestServer(t)
	unread := createMessage(t, s.db, false, false)
	replied := createMessage(t, s.db, true, true)

	t.Run("Bulk mark replied sets both flags", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/messages/triage", map[string]interface{}{
			"ids":    []string{unread.ID, replied.ID},
			"action": "replied",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, float64(1), resp["updated"])
		assert.Equal(t, float64(1), resp["skipped"])

		var reloaded models.ContactMessage
		require.NoError(t, s.db.First(&reloaded, "id = ?", unread.ID).Error)
		assert.True(t, reloaded.IsRead)
		assert.True(t, reloaded.IsReplied)
	})

	t.Run("Unread keeps replied messages read", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/messages/"+replied.ID+"/unread", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var reloaded models.ContactMessage
		require.NoError(t, s.db.First(&reloaded, "id = ?", replied.ID).Error)
		assert.True(t, reloaded.IsRead)
	})

	t.Run("Unknown action", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/messages/"+unread.ID+"/archive", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("List with counts", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/messages", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		counts := decode(t, rec)["counts"].(map[string]interface{})
		assert.Equal(t, float64(2), counts["total"])
		assert.Equal(t, float64(0), counts["unread"])
	})

	t.Run("Export", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/messages/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, services.XLSXContentType, rec.Header().Get(echo.HeaderContentType))
	})

	t.Run("Delete needs a superuser", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodDelete, "/api/staff/messages/"+unread.ID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.asSuperuser(t, http.MethodDelete, "/api/staff/messages/"+unread.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestStaffCatalogHandlers(t *testing.T) {
	s := newTestServer(t)

	t.Run("Service create, update and delete", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/services", map[string]interface{}{
			"title_ar":       "خدمة",
			"description_ar": "<p>وصف</p><script>alert(1)</script>",
			"features":       []string{"ميزة"},
			"is_active":      true,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decode(t, rec)
		id := created["id"].(string)
		assert.NotContains(t, created["description_ar"], "script")

		rec = s.asStaff(t, http.MethodPut, "/api/staff/services/"+id, map[string]interface{}{
			"title_ar":  "خدمة محدثة",
			"is_active": false,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "خدمة محدثة", decode(t, rec)["title_ar"])

		rec = s.asStaff(t, http.MethodGet, "/api/staff/services?status=inactive", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["data"], 1)

		rec = s.asStaff(t, http.MethodDelete, "/api/staff/services/"+id, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Service title required", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/services", map[string]interface{}{"title_en": "Only English"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode(t, rec)["errors"], "title_ar")
	})

	t.Run("Service with requests cannot be deleted", func(t *testing.T) {
		service := createService(t, s.db, "مطلوبة", true)
		createRequest(t, s.db, service.ID, models.RequestStatusPending)

		rec := s.asStaff(t, http.MethodDelete, "/api/staff/services/"+service.ID, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = s.asStaff(t, http.MethodGet, "/api/staff/services/"+service.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		counts := decode(t, rec)["request_counts"].(map[string]interface{})
		assert.Equal(t, float64(1), counts["pending"])
	})

	t.Run("News authored by the caller", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/news-categories", map[string]interface{}{"name_ar": "فعاليات", "is_active": true})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		categoryID := decode(t, rec)["id"].(string)

		rec = s.asStaff(t, http.MethodPost, "/api/staff/news", map[string]interface{}{
			"title_ar":     "خبر",
			"content_ar":   "نص",
			"category_id":  categoryID,
			"author_id":    "someone-else",
			"is_published": true,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, staffPrincipal.Subject, decode(t, rec)["author_id"])

		rec = s.asStaff(t, http.MethodDelete, "/api/staff/news-categories/"+categoryID, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Team member", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/team", map[string]interface{}{
			"name_ar":     "ليلى",
			"position_ar": "منسقة",
			"is_active":   true,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		id := decode(t, rec)["id"].(string)

		rec = s.asStaff(t, http.MethodPut, "/api/staff/team/"+id, map[string]interface{}{
			"name_ar":     "ليلى",
			"position_ar": "مديرة",
			"email":       "broken",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = s.asStaff(t, http.MethodDelete, "/api/staff/team/"+id, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Settings update needs a superuser", func(t *testing.T) {
		body := map[string]interface{}{"site_name_ar": "مؤسسة ركائز", "about_en": "About us"}

		rec := s.asStaff(t, http.MethodPut, "/api/staff/settings", body)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.asSuperuser(t, http.MethodPut, "/api/staff/settings", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(t, http.MethodGet, "/api/settings?lang=en", nil, "")
		assert.Equal(t, "About us", decode(t, rec)["about"])
	})
}

func TestStaffCatalogCreateDefaults(t *testing.T) {
	s := newTestServer(t)

	t.Run("Service is free and active", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/services", map[string]interface{}{"title_ar": "استشارة"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decode(t, rec)
		assert.Equal(t, true, created["is_free"])
		assert.Equal(t, true, created["is_active"])
		assert.Equal(t, false, created["is_featured"])

		rec = s.do(t, http.MethodGet, "/api/services/"+created["id"].(string), nil, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Explicit false is kept", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/services", map[string]interface{}{"title_ar": "رسوم", "is_free": false})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var stored models.Service
		require.NoError(t, s.db.First(&stored, "id = ?", decode(t, rec)["id"]).Error)
		assert.False(t, stored.IsFree)
		assert.True(t, stored.IsActive)
	})

	t.Run("Article is published", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/news-categories", map[string]interface{}{"name_ar": "أخبار"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		category := decode(t, rec)
		assert.Equal(t, true, category["is_active"])

		rec = s.asStaff(t, http.MethodPost, "/api/staff/news", map[string]interface{}{
			"title_ar":    "خبر",
			"content_ar":  "نص",
			"category_id": category["id"],
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, true, decode(t, rec)["is_published"])

		rec = s.do(t, http.MethodGet, "/api/news", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["data"], 1)
	})

	t.Run("Service category and team member are active", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodPost, "/api/staff/service-categories", map[string]interface{}{"name_ar": "تعليم"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, true, decode(t, rec)["is_active"])

		rec = s.asStaff(t, http.MethodPost, "/api/staff/team", map[string]interface{}{"name_ar": "ليلى", "position_ar": "منسقة"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, true, decode(t, rec)["is_active"])
	})
}

func TestDashboardHandlers(t *testing.T) {
	s := newTestServer(t)
	service := createService(t, s.db, "استشارة", true)
	createRequest(t, s.db, service.ID, models.RequestStatusPending)
	createMessage(t, s.db, false, false)

	t.Run("Stats", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/dashboard/stats", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, float64(1), resp["pending_requests"])
		assert.Equal(t, float64(1), resp["unread_messages"])
	})

	t.Run("Series zero-filled", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/dashboard/series?metric=messages&days=30", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode(t, rec)
		daily := resp["daily"].(map[string]interface{})["points"].([]interface{})
		monthly := resp["monthly"].(map[string]interface{})["points"].([]interface{})
		assert.Len(t, daily, 30)
		assert.Len(t, monthly, 12)
		assert.Equal(t, float64(1), daily[29].(map[string]interface{})["count"])
	})

	t.Run("Series rejects other windows", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/dashboard/series?days=14", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown metric", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/dashboard/series?metric=visitors", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Activity", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/dashboard/activity", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["data"], 2)
	})

	t.Run("Breakdown", func(t *testing.T) {
		rec := s.asStaff(t, http.MethodGet, "/api/staff/dashboard/breakdown", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["services"], 1)
	})
}

func TestMediaHandlers(t *testing.T) {
	s := newTestServer(t)

	upload := func(t *testing.T, kind, filename string, content []byte) *httptest.ResponseRecorder {
		t.Helper()
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.WriteField("kind", kind))
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/staff/media", body)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, staffPrincipal))
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		return rec
	}

	var pngBytes bytes.Buffer
	require.NoError(t, png.Encode(&pngBytes, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	t.Run("Stored and served", func(t *testing.T) {
		rec := upload(t, services.MediaKindService, "photo.png", pngBytes.Bytes())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decode(t, rec)
		key := resp["key"].(string)
		assert.Equal(t, services.MediaRoutePrefix+key, resp["url"])

		served := s.do(t, http.MethodGet, services.MediaRoutePrefix+key, nil, "")
		require.Equal(t, http.StatusOK, served.Code)
		assert.Equal(t, "image/png", served.Header().Get(echo.HeaderContentType))
		assert.Equal(t, pngBytes.Bytes(), served.Body.Bytes())
	})

	t.Run("Content must match the extension", func(t *testing.T) {
		rec := upload(t, services.MediaKindNews, "photo.png", []byte("plain text, not an image"))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode(t, rec)["errors"], "file")
	})

	t.Run("Unknown kind", func(t *testing.T) {
		rec := upload(t, "documents", "photo.png", pngBytes.Bytes())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing media", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, services.MediaRoutePrefix+"services/none.png", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
