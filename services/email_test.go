package services

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplate(t *testing.T) {
	original := emailTemplates
	t.Cleanup(func() { emailTemplates = original })

	emailTemplates = fstest.MapFS{
		"emails/test_template.html":    {Data: []byte("<html><body>Hello {{.UserName}}</body></html>")},
		"emails/test_template.txt":     {Data: []byte("Hello {{.UserName}}")},
		"emails/test_template_tr.html": {Data: []byte("<html><body>Merhaba {{.UserName}}</body></html>")},
		"emails/test_template_tr.txt":  {Data: []byte("Merhaba {{.UserName}}")},
	}

	type data struct {
		UserName string
	}
	tplData := data{UserName: "<Ali>"}

	t.Run("Load Base Template", func(t *testing.T) {
		html, text, err := loadTemplate("test_template", "en", tplData)
		assert.NoError(t, err)
		assert.Contains(t, html, "Hello &lt;Ali&gt;")
		assert.Equal(t, "Hello <Ali>", text)
	})

	t.Run("Load Localized Template", func(t *testing.T) {
		html, text, err := loadTemplate("test_template", "tr", tplData)
		assert.NoError(t, err)
		assert.Contains(t, html, "Merhaba")
		assert.Contains(t, text, "Merhaba")
	})

	t.Run("Fallback to Base when Localized Missing", func(t *testing.T) {
		html, _, err := loadTemplate("test_template", "ar", tplData)
		assert.NoError(t, err)
		assert.Contains(t, html, "Hello")
	})

	t.Run("Template Not Found", func(t *testing.T) {
		_, _, err := loadTemplate("non_existent", "en", tplData)
		assert.Error(t, err)
	})
}

func TestBuildContactMessageEmail(t *testing.T) {
	msg := &models.ContactMessage{
		ID:          "msg-1",
		Name:        "Visitor",
		Email:       "visitor@example.org",
		ContactType: models.ContactTypeComplaint,
		Subject:     "Opening hours",
		Message:     "When are you open?",
	}

	email, err := BuildContactMessageEmail("staff@example.org", "https://rakaiz.org/", "en", msg)
	require.NoError(t, err)

	assert.Equal(t, []string{"staff@example.org"}, email.To)
	assert.Equal(t, "New contact message: Opening hours", email.Subject)
	assert.Contains(t, email.TextBody, "When are you open?")
	assert.Contains(t, email.TextBody, "https://rakaiz.org/dashboard/messages/msg-1")

	email, err = BuildContactMessageEmail("staff@example.org", "https://rakaiz.org", "ar", msg)
	require.NoError(t, err)
	assert.Equal(t, "رسالة تواصل جديدة: Opening hours", email.Subject)
	assert.Contains(t, email.HTMLBody, `dir="rtl"`)
}

func TestBuildServiceRequestEmail(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	req := &models.ServiceRequest{
		ID:            "req-1",
		Name:          "Visitor",
		Email:         "visitor@example.org",
		Phone:         "+90 555 000 00 00",
		Kind:          models.RequestKindAppointment,
		Priority:      models.RequestPriorityHigh,
		Description:   "Need a consultation",
		PreferredDate: &date,
		Service:       &models.Service{TitleAr: "استشارة", TitleTr: "Danışmanlık"},
	}

	email, err := BuildServiceRequestEmail("staff@example.org", "https://rakaiz.org", "tr", req)
	require.NoError(t, err)

	assert.Equal(t, "Yeni randevu talebi: Danışmanlık", email.Subject)
	assert.Contains(t, email.TextBody, "appointment booking")
	assert.Contains(t, email.TextBody, "2026-03-14")
}

func TestEmailNotifierTestMode(t *testing.T) {
	notifier := NewEmailNotifier(&config.Config{EmailTestMode: true, StaffNotificationEmail: "staff@example.org"})

	err := notifier.NotifyContactMessage(context.Background(), &models.ContactMessage{ID: "m", Name: "n", Email: "e@example.org", Subject: "s", Message: "m"})
	assert.NoError(t, err)
}

func TestSendEmailRequiresAPIKey(t *testing.T) {
	err := SendEmail(&config.Config{EmailTestMode: false}, &Email{To: []string{"a@example.org"}, TextBody: "x"})
	assert.Error(t, err)
}
