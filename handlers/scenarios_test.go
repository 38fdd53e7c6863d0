package handlers

import (
	"net/http"
	"testing"

	"github.com/prog-Noon/rakaizfoundation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A visitor writes in and staff reads the message
func TestContactMessageReadByStaff(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/forms/contact", map[string]string{
		"name":         "Sara",
		"email":        "s@x.com",
		"subject":      "Q",
		"message":      "hello",
		"contact_type": "general",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["id"].(string)

	rec = s.asStaff(t, http.MethodGet, "/api/staff/messages?state=unread", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode(t, rec)["data"].([]interface{})
	require.Len(t, listed, 1)
	msg := listed[0].(map[string]interface{})
	assert.Equal(t, id, msg["id"])
	assert.Equal(t, false, msg["is_read"])
	assert.Equal(t, false, msg["is_replied"])

	rec = s.asStaff(t, http.MethodPost, "/api/staff/messages/"+id+"/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["updated"])

	var stored models.ContactMessage
	require.NoError(t, s.db.First(&stored, "id = ?", id).Error)
	assert.True(t, stored.IsRead)
	assert.False(t, stored.IsReplied)
	assert.Equal(t, "Sara", stored.Name)
	assert.Equal(t, models.ContactTypeGeneral, stored.ContactType)
}

// Staff publishes a service, a visitor requests it and staff completes the request
func TestServiceRequestCompletedByStaff(t *testing.T) {
	s := newTestServer(t)

	rec := s.asStaff(t, http.MethodPost, "/api/staff/services", map[string]interface{}{
		"title_ar":  "استشارة",
		"is_active": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	serviceID := decode(t, rec)["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/forms/service-request", map[string]string{
		"name":        "Visitor",
		"email":       "visitor@example.org",
		"phone":       "0500000000",
		"service_id":  serviceID,
		"description": "I would like a consultation",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	requestID := decode(t, rec)["id"].(string)

	rec = s.asStaff(t, http.MethodGet, "/api/staff/requests/"+requestID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	req := decode(t, rec)["request"].(map[string]interface{})
	assert.Equal(t, models.RequestStatusPending, req["status"])
	assert.Equal(t, models.RequestPriorityMedium, req["priority"])
	assert.Nil(t, req["response_date"])

	rec = s.asStaff(t, http.MethodGet, "/api/staff/services/"+serviceID, nil)
	counts := decode(t, rec)["request_counts"].(map[string]interface{})
	assert.Equal(t, float64(1), counts["pending"])

	rec = s.asStaff(t, http.MethodPut, "/api/staff/requests/"+requestID+"/status", map[string]string{"status": models.RequestStatusCompleted})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decode(t, rec)
	assert.Equal(t, models.RequestStatusCompleted, completed["status"])
	assert.NotNil(t, completed["response_date"])

	rec = s.asStaff(t, http.MethodGet, "/api/staff/services/"+serviceID, nil)
	counts = decode(t, rec)["request_counts"].(map[string]interface{})
	assert.Equal(t, float64(0), counts["pending"])
	assert.Equal(t, float64(1), counts["completed"])

	rec = s.asStaff(t, http.MethodGet, "/api/staff/dashboard/stats", nil)
	assert.Equal(t, float64(0), decode(t, rec)["pending_requests"])
}
