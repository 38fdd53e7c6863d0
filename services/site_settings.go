package services

import (
	"errors"

	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetSiteSettings returns the stored settings, or the defaults when none are stored yet
func GetSiteSettings(db *gorm.DB) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := db.First(&settings, "id = ?", models.SiteSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := models.DefaultSiteSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// EnsureSiteSettings creates the settings row with defaults if it does not exist
func EnsureSiteSettings(db *gorm.DB) (*models.SiteSettings, error) {
	var count int64
	if err := db.Model(&models.SiteSettings{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return GetSiteSettings(db)
	}

	settings := models.DefaultSiteSettings()
	if err := CreateSiteSettings(db, &settings); err != nil {
		return nil, err
	}
	logging.Log.Info("Created default site settings")
	return &settings, nil
}

// CreateSiteSettings stores the settings row. A second row is a configuration error.
func CreateSiteSettings(db *gorm.DB, settings *models.SiteSettings) error {
	err := db.Create(settings).Error
	if errors.Is(err, models.ErrSiteSettingsExists) {
		logging.Log.Error("Refusing to create a second site settings record", zap.Error(err))
	}
	return err
}

func prepareSiteSettings(s *models.SiteSettings) error {
	cleanLocalized(
		&s.SiteNameAr, &s.SiteNameEn, &s.SiteNameTr,
		&s.TaglineAr, &s.TaglineEn, &s.TaglineTr,
		&s.AddressAr, &s.AddressEn, &s.AddressTr,
		&s.MetaDescriptionAr, &s.MetaDescriptionEn, &s.MetaDescriptionTr,
		&s.Phone, &s.Email, &s.WhatsApp, &s.GoogleAnalyticsID,
		&s.Facebook, &s.Instagram, &s.Twitter, &s.Linkedin, &s.Youtube,
	)
	cleanRichText(
		&s.AboutAr, &s.AboutEn, &s.AboutTr,
		&s.VisionAr, &s.VisionEn, &s.VisionTr,
		&s.MissionAr, &s.MissionEn, &s.MissionTr,
	)

	verr := NewValidationError()
	requireFallbackText(s, verr, "site_name")
	if s.Email != "" {
		if err := validate.Var(s.Email, "email"); err != nil {
			verr.Add("email", "Enter a valid email address.")
		}
	}
	for field, value := range map[string]string{
		"facebook":  s.Facebook,
		"instagram": s.Instagram,
		"twitter":   s.Twitter,
		"linkedin":  s.Linkedin,
		"youtube":   s.Youtube,
	} {
		if value != "" {
			if err := validate.Var(value, "url"); err != nil {
				verr.Add(field, "Enter a valid URL.")
			}
		}
	}
	return verr.errOrNil()
}

// UpdateSiteSettings replaces the settings. Only superusers may change them.
func UpdateSiteSettings(db *gorm.DB, actor *identity.Principal, audit AuditContext, input *models.SiteSettings) (*models.SiteSettings, error) {
	if err := requireSuperuser(actor); err != nil {
		return nil, err
	}
	existing, err := EnsureSiteSettings(db)
	if err != nil {
		return nil, err
	}
	old := *existing

	if err := prepareSiteSettings(input); err != nil {
		return nil, err
	}
	input.ID = models.SiteSettingsID
	input.CreatedAt = existing.CreatedAt

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SiteSettings{ID: models.SiteSettingsID}).Select("*").Omit("id", "created_at").Updates(input).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionUpdate,
			ResourceType: models.AuditResourceSiteSettings,
			ResourceID:   "1",
			ResourceName: input.SiteNameAr,
			OldValues:    old,
			NewValues:    input,
		})
	})
	if err != nil {
		return nil, err
	}
	ReleaseMedia(old.Logo, input.Logo)
	ReleaseMedia(old.Favicon, input.Favicon)
	return GetSiteSettings(db)
}
