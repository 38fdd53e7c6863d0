package models

import (
	"time"

	"github.com/prog-Noon/rakaizfoundation/i18n"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamMember is a person shown on the team page
type TeamMember struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NameAr     string `gorm:"not null" json:"name_ar"`
	NameEn     string `json:"name_en"`
	NameTr     string `json:"name_tr"`
	PositionAr string `gorm:"not null" json:"position_ar"`
	PositionEn string `json:"position_en"`
	PositionTr string `json:"position_tr"`
	BioAr      string `gorm:"type:text" json:"bio_ar"`
	BioEn      string `gorm:"type:text" json:"bio_en"`
	BioTr      string `gorm:"type:text" json:"bio_tr"`

	Photo    string `json:"photo"` // storage key
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Facebook string `json:"facebook"`
	Linkedin string `json:"linkedin"`

	IsActive  bool `gorm:"not null;index" json:"is_active"`
	SortOrder int  `gorm:"not null;default:0" json:"order"`
}

// NewTeamMember returns a team member with the column defaults applied
func NewTeamMember() *TeamMember {
	return &TeamMember{IsActive: true}
}

// BeforeCreate hook to generate UUID
func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for TeamMember model
func (TeamMember) TableName() string {
	return "team_members"
}

// LocalizedFields implements i18n.Multilingual
func (m *TeamMember) LocalizedFields() map[string]i18n.LocalizedText {
	return map[string]i18n.LocalizedText{
		"name":     i18n.Text(m.NameAr, m.NameEn, m.NameTr),
		"position": i18n.Text(m.PositionAr, m.PositionEn, m.PositionTr),
		"bio":      i18n.Text(m.BioAr, m.BioEn, m.BioTr),
	}
}

func (m *TeamMember) Name(locale string) string {
	return i18n.Text(m.NameAr, m.NameEn, m.NameTr).Resolve(locale, i18n.Fallback())
}

func (m *TeamMember) Position(locale string) string {
	return i18n.Text(m.PositionAr, m.PositionEn, m.PositionTr).Resolve(locale, i18n.Fallback())
}

func (m *TeamMember) Bio(locale string) string {
	return i18n.Text(m.BioAr, m.BioEn, m.BioTr).Resolve(locale, i18n.Fallback())
}
