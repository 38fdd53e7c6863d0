package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/metrics"
	"github.com/prog-Noon/rakaizfoundation/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FormKind identifies a public intake form
type FormKind string

const (
	FormContact        FormKind = "contact"
	FormServiceRequest FormKind = "service_request"
	FormAppointment    FormKind = "appointment"
)

// IsValid reports whether the kind names a known form
func (k FormKind) IsValid() bool {
	switch k {
	case FormContact, FormServiceRequest, FormAppointment:
		return true
	}
	return false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field errors by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// IntakeInput is the raw visitor submission for any form kind
type IntakeInput struct {
	Name          string `json:"name" form:"name"`
	Email         string `json:"email" form:"email"`
	Phone         string `json:"phone" form:"phone"`
	ContactType   string `json:"contact_type" form:"contact_type"`
	Subject       string `json:"subject" form:"subject"`
	Message       string `json:"message" form:"message"`
	ServiceID     string `json:"service_id" form:"service_id"`
	Description   string `json:"description" form:"description"`
	Priority      string `json:"priority" form:"priority"`
	PreferredDate string `json:"preferred_date" form:"preferred_date"`

	// Set by the transport layer
	IPAddress string `json:"-" form:"-"`
	UserAgent string `json:"-" form:"-"`
}

type contactForm struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	ContactType string `json:"contact_type" validate:"omitempty,oneof=general service appointment complaint"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Message     string `json:"message" validate:"required"`
}

type serviceRequestForm struct {
	Name          string `json:"name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Phone         string `json:"phone" validate:"required,max=20"`
	ServiceID     string `json:"service_id" validate:"required"`
	Description   string `json:"description" validate:"required"`
	Priority      string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	PreferredDate string `json:"preferred_date" validate:"omitempty,datetime=2006-01-02"`
}

type appointmentForm struct {
	Name          string `json:"name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Phone         string `json:"phone" validate:"required,max=20"`
	ServiceID     string `json:"service_id" validate:"required"`
	Description   string `json:"description" validate:"required"`
	PreferredDate string `json:"preferred_date" validate:"required,datetime=2006-01-02"`
}

// IntakeResult is the record created by a successful submission
type IntakeResult struct {
	Kind           FormKind               `json:"kind"`
	ContactMessage *models.ContactMessage `json:"contact_message,omitempty"`
	ServiceRequest *models.ServiceRequest `json:"service_request,omitempty"`
	// Notified is false when the staff notification failed; the record is saved either way
	Notified bool `json:"-"`
}

// IntakeService validates and stores visitor submissions, then notifies staff
type IntakeService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewIntakeService(db *gorm.DB, notifier Notifier) *IntakeService {
	return &IntakeService{db: db, notifier: notifier}
}

// Submit validates input for kind and persists it. Validation failures return a *ValidationError
// and store nothing. A failed notification is logged and counted but does not fail the submission.
func (s *IntakeService) Submit(ctx context.Context, kind FormKind, input IntakeInput) (*IntakeResult, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown form kind %q", kind)
	}
	input = cleanIntakeInput(input)

	result, err := s.persist(ctx, kind, input)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.RecordIntakeSubmission(string(kind), "invalid")
		} else {
			metrics.RecordIntakeSubmission(string(kind), "error")
			logging.Log.Error("Failed to store submission", zap.String("kind", string(kind)), zap.Error(err))
		}
		return nil, err
	}
	metrics.RecordIntakeSubmission(string(kind), "accepted")

	result.Notified = s.notify(ctx, result)
	return result, nil
}

func (s *IntakeService) persist(ctx context.Context, kind FormKind, input IntakeInput) (*IntakeResult, error) {
	switch kind {
	case FormContact:
		msg, err := s.submitContact(ctx, input)
		if err != nil {
			return nil, err
		}
		return &IntakeResult{Kind: kind, ContactMessage: msg}, nil
	default:
		req, err := s.submitServiceRequest(ctx, kind, input)
		if err != nil {
			return nil, err
		}
		return &IntakeResult{Kind: kind, ServiceRequest: req}, nil
	}
}

func (s *IntakeService) submitContact(ctx context.Context, input IntakeInput) (*models.ContactMessage, error) {
	form := contactForm{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		ContactType: input.ContactType,
		Subject:     input.Subject,
		Message:     input.Message,
	}
	if err := validationErrors(validate.Struct(form)); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		Name:        form.Name,
		Email:       form.Email,
		Phone:       form.Phone,
		ContactType: form.ContactType,
		Subject:     form.Subject,
		Message:     form.Message,
		IPAddress:   input.IPAddress,
		UserAgent:   input.UserAgent,
	}
	if msg.ContactType == "" {
		msg.ContactType = models.ContactTypeGeneral
	}

	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}
	return msg, nil
}

func (s *IntakeService) submitServiceRequest(ctx context.Context, kind FormKind, input IntakeInput) (*models.ServiceRequest, error) {
	req := &models.ServiceRequest{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		ServiceID:   input.ServiceID,
		Description: input.Description,
		Priority:    models.RequestPriorityMedium,
		Status:      models.RequestStatusPending,
		Kind:        models.RequestKindService,
		IPAddress:   input.IPAddress,
		UserAgent:   input.UserAgent,
	}

	var err error
	if kind == FormAppointment {
		err = validate.Struct(appointmentForm{
			Name:          input.Name,
			Email:         input.Email,
			Phone:         input.Phone,
			ServiceID:     input.ServiceID,
			Description:   input.Description,
			PreferredDate: input.PreferredDate,
		})
		// Appointments are always handled first
		req.Kind = models.RequestKindAppointment
		req.Priority = models.RequestPriorityHigh
	} else {
		err = validate.Struct(serviceRequestForm{
			Name:          input.Name,
			Email:         input.Email,
			Phone:         input.Phone,
			ServiceID:     input.ServiceID,
			Description:   input.Description,
			Priority:      input.Priority,
			PreferredDate: input.PreferredDate,
		})
		if input.Priority != "" {
			req.Priority = input.Priority
		}
	}

	verr := NewValidationError()
	if err := validationErrors(err); err != nil {
		fieldErrs, ok := err.(*ValidationError)
		if !ok {
			return nil, err
		}
		verr = fieldErrs
	}

	if input.PreferredDate != "" {
		if date, parseErr := time.Parse(models.PreferredDateLayout, input.PreferredDate); parseErr == nil {
			req.PreferredDate = &date
		}
	}

	if input.ServiceID != "" {
		service, lookupErr := GetActiveService(s.db.WithContext(ctx), input.ServiceID)
		switch {
		case errors.Is(lookupErr, ErrNotFound):
			verr.Add("service_id", "Select a valid service.")
		case lookupErr != nil:
			return nil, fmt.Errorf("failed to look up service: %w", lookupErr)
		default:
			req.Service = service
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	// The service row is only read here; keep gorm from upserting it with the request
	if err := s.db.WithContext(ctx).Omit("Service").Create(req).Error; err != nil {
		return nil, fmt.Errorf("failed to save service request: %w", err)
	}
	return req, nil
}

// notify sends the staff notification and reports whether it went out
func (s *IntakeService) notify(ctx context.Context, result *IntakeResult) bool {
	if s.notifier == nil {
		return false
	}

	var err error
	if result.ContactMessage != nil {
		err = s.notifier.NotifyContactMessage(ctx, result.ContactMessage)
	} else {
		err = s.notifier.NotifyServiceRequest(ctx, result.ServiceRequest)
	}
	if err == nil {
		return true
	}

	nerr := &NotificationError{Kind: string(result.Kind), Err: err}
	metrics.RecordNotificationFailure(string(result.Kind))
	logging.Log.Warn("Staff notification failed; submission was saved", zap.Error(nerr))
	return false
}

// cleanIntakeInput strips markup from visitor text
func cleanIntakeInput(in IntakeInput) IntakeInput {
	in.Name = models.PlainText(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = models.PlainText(in.Phone)
	in.ContactType = strings.TrimSpace(in.ContactType)
	in.Subject = models.PlainText(in.Subject)
	in.Message = models.PlainText(in.Message)
	in.ServiceID = strings.TrimSpace(in.ServiceID)
	in.Description = models.PlainText(in.Description)
	in.Priority = strings.TrimSpace(in.Priority)
	in.PreferredDate = strings.TrimSpace(in.PreferredDate)
	return in
}

// validationErrors converts validator errors into a *ValidationError; other errors pass through
func validationErrors(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := NewValidationError()
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "oneof":
		return "Select a valid choice."
	case "datetime":
		return "Enter a valid date (YYYY-MM-DD)."
	case "url":
		return "Enter a valid URL."
	default:
		return "Enter a valid value."
	}
}
