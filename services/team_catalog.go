package services

import (
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/i18n"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"gorm.io/gorm"
)

func teamOrder() string {
	return "sort_order ASC, name_" + i18n.Fallback() + " ASC"
}

// ListActiveTeamMembers returns active members in display order. A limit <= 0 returns all of them.
func ListActiveTeamMembers(db *gorm.DB, search string, limit int) ([]models.TeamMember, error) {
	query := db.Model(&models.TeamMember{}).
		Where("is_active = ?", true).
		Scopes(searchScope(search, teamSearchAttributes...)).
		Order(teamOrder())
	if limit > 0 {
		query = query.Limit(limit)
	}

	var members []models.TeamMember
	err := query.Find(&members).Error
	return members, err
}

// GetActiveTeamMember retrieves an active team member
func GetActiveTeamMember(db *gorm.DB, id string) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := db.Where("id = ? AND is_active = ?", id, true).First(&member).Error; err != nil {
		return nil, notFound(err)
	}
	return &member, nil
}

// ListTeamMembersForStaff returns every member including inactive ones
func ListTeamMembersForStaff(db *gorm.DB, search string) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := db.Scopes(searchScope(search, teamSearchAttributes...)).Order(teamOrder()).Find(&members).Error
	return members, err
}

func prepareTeamMember(m *models.TeamMember) error {
	cleanLocalized(&m.NameAr, &m.NameEn, &m.NameTr, &m.PositionAr, &m.PositionEn, &m.PositionTr)
	cleanRichText(&m.BioAr, &m.BioEn, &m.BioTr)
	cleanLocalized(&m.Email, &m.Phone, &m.Facebook, &m.Linkedin)

	verr := NewValidationError()
	requireFallbackText(m, verr, "name", "position")
	if m.Email != "" {
		if err := validate.Var(m.Email, "email"); err != nil {
			verr.Add("email", "Enter a valid email address.")
		}
	}
	for field, value := range map[string]string{"facebook": m.Facebook, "linkedin": m.Linkedin} {
		if value != "" {
			if err := validate.Var(value, "url"); err != nil {
				verr.Add(field, "Enter a valid URL.")
			}
		}
	}
	return verr.errOrNil()
}

// SaveTeamMember creates the member when id is empty and updates it otherwise
func SaveTeamMember(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string, m *models.TeamMember) (*models.TeamMember, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := prepareTeamMember(m); err != nil {
		return nil, err
	}

	var replacedPhoto string
	err := db.Transaction(func(tx *gorm.DB) error {
		entry := AuditEntry{ResourceType: models.AuditResourceTeamMember, ResourceName: m.NameAr, NewValues: m}
		if id == "" {
			m.ID = ""
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			entry.Action = models.AuditActionCreate
		} else {
			var existing models.TeamMember
			if err := tx.First(&existing, "id = ?", id).Error; err != nil {
				return notFound(err)
			}
			m.ID = existing.ID
			m.CreatedAt = existing.CreatedAt
			if err := tx.Model(&existing).Select("*").Omit("id", "created_at").Updates(m).Error; err != nil {
				return err
			}
			entry.Action = models.AuditActionUpdate
			entry.OldValues = existing
			replacedPhoto = existing.Photo
		}
		entry.ResourceID = m.ID
		return RecordAudit(tx, audit, entry)
	})
	if err != nil {
		return nil, err
	}
	ReleaseMedia(replacedPhoto, m.Photo)
	return m, nil
}

// DeleteTeamMember removes a team member
func DeleteTeamMember(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	var existing models.TeamMember
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionDelete,
			ResourceType: models.AuditResourceTeamMember,
			ResourceID:   id,
			ResourceName: existing.NameAr,
			OldValues:    existing,
		})
	})
	if err != nil {
		return err
	}
	ReleaseMedia(existing.Photo, "")
	return nil
}
