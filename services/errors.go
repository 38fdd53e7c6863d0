package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services/identity"
)

// Shared errors. Inactive and missing records both map to ErrNotFound.
var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrUnknownMetric      = errors.New("unknown metric")
	ErrNoRecordsSelected  = errors.New("no records selected")
	ErrSiteSettingsExists = models.ErrSiteSettingsExists
)

// ValidationError carries one message per invalid field
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records the first message for a field
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e.Fields[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// errOrNil returns e only when it holds field errors
func (e *ValidationError) errOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// NotificationError wraps a failed staff notification. It is logged, never returned to visitors.
type NotificationError struct {
	Kind string
	Err  error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification for %s failed: %v", e.Kind, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// requireStaff rejects callers without the staff claim
func requireStaff(actor *identity.Principal) error {
	if !actor.IsStaffMember() {
		return ErrPermissionDenied
	}
	return nil
}

// requireSuperuser rejects callers without the superuser claim
func requireSuperuser(actor *identity.Principal) error {
	if !actor.CanAdminister() {
		return ErrPermissionDenied
	}
	return nil
}
