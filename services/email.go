package services

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/i18n"
	"github.com/prog-Noon/rakaizfoundation/templates"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// emailTemplates is the template source; tests swap it for an in-memory FS
var emailTemplates fs.FS = templates.Emails

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// buildEmailWithFallback renders templateName in lang, falling back to the base template
func buildEmailWithFallback(templateName string, lang string, tmplData interface{}, toEmail string) (*Email, error) {
	htmlBody, textBody, err := loadTemplate(templateName, lang, tmplData)
	if err != nil {
		return nil, err
	}
	return &Email{
		To:       []string{toEmail},
		HTMLBody: htmlBody,
		TextBody: textBody,
	}, nil
}

// loadTemplate loads emails/<templateName>_<lang>.html/.txt, or emails/<templateName>.html/.txt when the localized file is missing
func loadTemplate(templateName string, lang string, data interface{}) (html string, text string, err error) {
	read := func(ext string) (string, string, error) {
		name := path.Join("emails", fmt.Sprintf("%s_%s%s", templateName, lang, ext))
		content, err := fs.ReadFile(emailTemplates, name)
		if err != nil {
			name = path.Join("emails", templateName+ext)
			content, err = fs.ReadFile(emailTemplates, name)
			if err != nil {
				return "", "", fmt.Errorf("failed to read template %s: %w", name, err)
			}
		}
		return name, string(content), nil
	}

	name, content, err := read(".html")
	if err != nil {
		return "", "", err
	}
	htmlTmpl, err := htmltemplate.New(path.Base(name)).Parse(content)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	name, content, err = read(".txt")
	if err != nil {
		return "", "", err
	}
	textTmpl, err := texttemplate.New(path.Base(name)).Parse(content)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	logging.Log.Info("Email sent via Resend", zap.String("id", sent.Id), zap.Strings("to", email.To))
	return nil
}

// logEmailToConsole logs email details in test mode
func logEmailToConsole(email *Email) {
	logging.Log.Info("Email logged (test mode - not sent)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", email.TextBody),
		zap.String("html_preview", truncate(email.HTMLBody, 500)),
	)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// Notifier tells staff about new visitor submissions
type Notifier interface {
	NotifyContactMessage(ctx context.Context, msg *models.ContactMessage) error
	NotifyServiceRequest(ctx context.Context, req *models.ServiceRequest) error
}

// EmailNotifier sends submission notifications to STAFF_NOTIFICATION_EMAIL
type EmailNotifier struct {
	cfg *config.Config
}

func NewEmailNotifier(cfg *config.Config) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// ContactMessageEmailData contains data for the new contact message template
type ContactMessageEmailData struct {
	Name         string
	Email        string
	Phone        string
	ContactType  string
	Subject      string
	Message      string
	DashboardURL string
}

// ServiceRequestEmailData contains data for the new service request template
type ServiceRequestEmailData struct {
	Name          string
	Email         string
	Phone         string
	ServiceTitle  string
	Priority      string
	PreferredDate string
	Description   string
	IsAppointment bool
	DashboardURL  string
}

var notificationSubjects = map[string]map[string]string{
	"new_contact_message": {
		i18n.LocaleArabic:  "رسالة تواصل جديدة: %s",
		i18n.LocaleEnglish: "New contact message: %s",
		i18n.LocaleTurkish: "Yeni iletişim mesajı: %s",
	},
	"new_service_request": {
		i18n.LocaleArabic:  "طلب خدمة جديد: %s",
		i18n.LocaleEnglish: "New service request: %s",
		i18n.LocaleTurkish: "Yeni hizmet talebi: %s",
	},
	"new_appointment": {
		i18n.LocaleArabic:  "حجز موعد جديد: %s",
		i18n.LocaleEnglish: "New appointment booking: %s",
		i18n.LocaleTurkish: "Yeni randevu talebi: %s",
	},
}

func notificationSubject(key, lang, value string) string {
	return fmt.Sprintf(i18n.LocalizedText(notificationSubjects[key]).Resolve(lang, i18n.LocaleEnglish), value)
}

// BuildContactMessageEmail creates the staff notification for a contact message
func BuildContactMessageEmail(to, appURL, lang string, msg *models.ContactMessage) (*Email, error) {
	data := ContactMessageEmailData{
		Name:         msg.Name,
		Email:        msg.Email,
		Phone:        msg.Phone,
		ContactType:  msg.ContactType,
		Subject:      msg.Subject,
		Message:      msg.Message,
		DashboardURL: strings.TrimRight(appURL, "/") + "/dashboard/messages/" + msg.ID,
	}

	email, err := buildEmailWithFallback("new_contact_message", lang, data, to)
	if err != nil {
		return nil, err
	}
	email.Subject = notificationSubject("new_contact_message", lang, msg.Subject)
	return email, nil
}

// BuildServiceRequestEmail creates the staff notification for a service request or appointment
func BuildServiceRequestEmail(to, appURL, lang string, req *models.ServiceRequest) (*Email, error) {
	data := ServiceRequestEmailData{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Priority:      req.Priority,
		Description:   req.Description,
		IsAppointment: req.IsAppointment(),
		DashboardURL:  strings.TrimRight(appURL, "/") + "/dashboard/requests/" + req.ID,
	}
	if req.Service != nil {
		data.ServiceTitle = req.Service.Title(lang)
	}
	if req.PreferredDate != nil {
		data.PreferredDate = req.PreferredDate.Format(models.PreferredDateLayout)
	}

	email, err := buildEmailWithFallback("new_service_request", lang, data, to)
	if err != nil {
		return nil, err
	}
	subjectKey := "new_service_request"
	if req.IsAppointment() {
		subjectKey = "new_appointment"
	}
	email.Subject = notificationSubject(subjectKey, lang, data.ServiceTitle)
	return email, nil
}

func (n *EmailNotifier) NotifyContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	email, err := BuildContactMessageEmail(n.cfg.StaffNotificationEmail, n.cfg.AppURL, i18n.Fallback(), msg)
	if err != nil {
		return err
	}
	return SendEmail(n.cfg, email)
}

func (n *EmailNotifier) NotifyServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	email, err := BuildServiceRequestEmail(n.cfg.StaffNotificationEmail, n.cfg.AppURL, i18n.Fallback(), req)
	if err != nil {
		return err
	}
	return SendEmail(n.cfg, email)
}
