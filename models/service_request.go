package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Request status constants
const (
	RequestStatusPending    = "pending"
	RequestStatusProcessing = "processing"
	RequestStatusCompleted  = "completed"
	RequestStatusCancelled  = "cancelled"
)

// Request priority constants
const (
	RequestPriorityLow    = "low"
	RequestPriorityMedium = "medium"
	RequestPriorityHigh   = "high"
	RequestPriorityUrgent = "urgent"
)

// Request kind constants
const (
	RequestKindService     = "service_request"
	RequestKindAppointment = "appointment"
)

// PreferredDateLayout is the wire format of ServiceRequest.PreferredDate
const PreferredDateLayout = "2006-01-02"

// ServiceRequest is a visitor request for a service or an appointment booking
type ServiceRequest struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null;index" json:"email"`
	Phone string `gorm:"not null" json:"phone"`

	ServiceID string   `gorm:"type:uuid;not null;index" json:"service_id"`
	Service   *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	Kind          string     `gorm:"not null;default:service_request;index" json:"kind"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`

	Priority string `gorm:"not null;default:medium;index" json:"priority"`
	Status   string `gorm:"not null;default:pending;index" json:"status"`

	// Staff-only fields
	AdminNotes   *string    `gorm:"type:text" json:"admin_notes,omitempty"`
	ResponseDate *time.Time `json:"response_date,omitempty"`

	// Request metadata
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// BeforeCreate hook to generate UUID and apply intake defaults
func (r *ServiceRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = RequestStatusPending
	}
	if r.Priority == "" {
		r.Priority = RequestPriorityMedium
	}
	if r.Kind == "" {
		r.Kind = RequestKindService
	}
	return nil
}

// TableName specifies the table name for ServiceRequest model
func (ServiceRequest) TableName() string {
	return "service_requests"
}

// IsValidRequestStatus checks if a status is valid
func IsValidRequestStatus(status string) bool {
	switch status {
	case RequestStatusPending, RequestStatusProcessing, RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// IsValidRequestPriority checks if a priority is valid
func IsValidRequestPriority(priority string) bool {
	switch priority {
	case RequestPriorityLow, RequestPriorityMedium, RequestPriorityHigh, RequestPriorityUrgent:
		return true
	}
	return false
}

// GetRequestStatuses returns all statuses in lifecycle order
func GetRequestStatuses() []string {
	return []string{RequestStatusPending, RequestStatusProcessing, RequestStatusCompleted, RequestStatusCancelled}
}

// GetRequestPriorities returns all priorities from lowest to highest
func GetRequestPriorities() []string {
	return []string{RequestPriorityLow, RequestPriorityMedium, RequestPriorityHigh, RequestPriorityUrgent}
}

// requestTransitions maps each target status to the statuses it may be entered from.
// Completed and cancelled are terminal.
var requestTransitions = map[string][]string{
	RequestStatusProcessing: {RequestStatusPending},
	RequestStatusCompleted:  {RequestStatusPending, RequestStatusProcessing},
	RequestStatusCancelled:  {RequestStatusPending, RequestStatusProcessing},
}

// RequestStatusSources returns the statuses from which target can be entered
func RequestStatusSources(target string) []string {
	return requestTransitions[target]
}

// CanTransitionRequest reports whether a request may move from one status to another.
// Staying in the same status is not a transition.
func CanTransitionRequest(from, to string) bool {
	for _, source := range requestTransitions[to] {
		if source == from {
			return true
		}
	}
	return false
}

// IsTerminalRequestStatus reports whether no further transitions are allowed
func IsTerminalRequestStatus(status string) bool {
	return status == RequestStatusCompleted || status == RequestStatusCancelled
}

// IsAppointment reports whether the request came from the appointment form
func (r *ServiceRequest) IsAppointment() bool {
	return r.Kind == RequestKindAppointment
}
