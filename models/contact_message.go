package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact type constants
const (
	ContactTypeGeneral     = "general"
	ContactTypeService     = "service" // service inquiry
	ContactTypeAppointment = "appointment"
	ContactTypeComplaint   = "complaint"
)

// ContactMessage is a message submitted through the public contact form
type ContactMessage struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"not null" json:"name"`
	Email       string `gorm:"not null;index" json:"email"`
	Phone       string `json:"phone,omitempty"`
	ContactType string `gorm:"not null;default:general;index" json:"contact_type"`
	Subject     string `gorm:"not null" json:"subject"`
	Message     string `gorm:"type:text;not null" json:"message"`

	// Triage state. IsReplied implies IsRead.
	IsRead    bool `gorm:"not null;index" json:"is_read"`
	IsReplied bool `gorm:"not null;index" json:"is_replied"`

	// Request metadata
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// BeforeCreate hook to generate UUID
func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.ContactType == "" {
		m.ContactType = ContactTypeGeneral
	}
	return nil
}

// TableName specifies the table name for ContactMessage model
func (ContactMessage) TableName() string {
	return "contact_messages"
}

// IsValidContactType checks if a contact type is valid
func IsValidContactType(contactType string) bool {
	switch contactType {
	case ContactTypeGeneral, ContactTypeService, ContactTypeAppointment, ContactTypeComplaint:
		return true
	}
	return false
}

// GetContactTypes returns all contact types in display order
func GetContactTypes() []string {
	return []string{ContactTypeGeneral, ContactTypeService, ContactTypeAppointment, ContactTypeComplaint}
}

// TriageConsistent reports whether the read/replied flags satisfy IsReplied => IsRead
func (m *ContactMessage) TriageConsistent() bool {
	return !m.IsReplied || m.IsRead
}
