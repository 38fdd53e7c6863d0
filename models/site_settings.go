package models

import (
	"errors"
	"time"

	"github.com/prog-Noon/rakaizfoundation/i18n"

	"gorm.io/gorm"
)

// SiteSettingsID is the primary key of the only settings row
const SiteSettingsID uint = 1

// ErrSiteSettingsExists is returned when a second settings row is created
var ErrSiteSettingsExists = errors.New("site settings already exist; only one settings record is allowed")

// SiteSettings holds the about content and contact details of the foundation.
// Exactly one row exists.
type SiteSettings struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SiteNameAr        string `gorm:"not null" json:"site_name_ar"`
	SiteNameEn        string `json:"site_name_en"`
	SiteNameTr        string `json:"site_name_tr"`
	TaglineAr         string `json:"tagline_ar"`
	TaglineEn         string `json:"tagline_en"`
	TaglineTr         string `json:"tagline_tr"`
	AboutAr           string `gorm:"type:text" json:"about_ar"`
	AboutEn           string `gorm:"type:text" json:"about_en"`
	AboutTr           string `gorm:"type:text" json:"about_tr"`
	VisionAr          string `gorm:"type:text" json:"vision_ar"`
	VisionEn          string `gorm:"type:text" json:"vision_en"`
	VisionTr          string `gorm:"type:text" json:"vision_tr"`
	MissionAr         string `gorm:"type:text" json:"mission_ar"`
	MissionEn         string `gorm:"type:text" json:"mission_en"`
	MissionTr         string `gorm:"type:text" json:"mission_tr"`
	AddressAr         string `gorm:"type:text" json:"address_ar"`
	AddressEn         string `gorm:"type:text" json:"address_en"`
	AddressTr         string `gorm:"type:text" json:"address_tr"`
	MetaDescriptionAr string `gorm:"type:text" json:"meta_description_ar"`
	MetaDescriptionEn string `gorm:"type:text" json:"meta_description_en"`
	MetaDescriptionTr string `gorm:"type:text" json:"meta_description_tr"`

	Logo    string `json:"logo"`    // storage key
	Favicon string `json:"favicon"` // storage key

	Phone    string `json:"phone"`
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`

	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	Linkedin  string `json:"linkedin"`
	Youtube   string `json:"youtube"`

	GoogleMapsEmbed   string `gorm:"type:text" json:"google_maps_embed"`
	GoogleAnalyticsID string `json:"google_analytics_id"`
}

// BeforeCreate pins the row id and refuses a second row
func (s *SiteSettings) BeforeCreate(tx *gorm.DB) error {
	var count int64
	if err := tx.Session(&gorm.Session{NewDB: true}).Model(&SiteSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSiteSettingsExists
	}
	s.ID = SiteSettingsID
	return nil
}

// TableName specifies the table name for SiteSettings model
func (SiteSettings) TableName() string {
	return "site_settings"
}

// DefaultSiteSettings returns the values used before staff fill in the settings
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:         SiteSettingsID,
		SiteNameAr: "مؤسسة ركائز",
		SiteNameEn: "Rakaiz Foundation",
		SiteNameTr: "Rakaiz Vakfı",
	}
}

// LocalizedFields implements i18n.Multilingual
func (s *SiteSettings) LocalizedFields() map[string]i18n.LocalizedText {
	return map[string]i18n.LocalizedText{
		"site_name":        i18n.Text(s.SiteNameAr, s.SiteNameEn, s.SiteNameTr),
		"tagline":          i18n.Text(s.TaglineAr, s.TaglineEn, s.TaglineTr),
		"about":            i18n.Text(s.AboutAr, s.AboutEn, s.AboutTr),
		"vision":           i18n.Text(s.VisionAr, s.VisionEn, s.VisionTr),
		"mission":          i18n.Text(s.MissionAr, s.MissionEn, s.MissionTr),
		"address":          i18n.Text(s.AddressAr, s.AddressEn, s.AddressTr),
		"meta_description": i18n.Text(s.MetaDescriptionAr, s.MetaDescriptionEn, s.MetaDescriptionTr),
	}
}

// Localized resolves a declared attribute; unknown attributes resolve to "".
func (s *SiteSettings) Localized(attribute, locale string) string {
	value, err := i18n.Resolve(s, attribute, locale, i18n.Fallback())
	if err != nil {
		return ""
	}
	return value
}
