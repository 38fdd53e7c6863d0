package services

import (
	"errors"
	"time"

	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncStaffUser mirrors a verified principal into the users table so that
// authorship and audit entries can be joined to a name.
func SyncStaffUser(db *gorm.DB, principal *identity.Principal, now time.Time) (*models.User, error) {
	if principal == nil || principal.Subject == "" {
		return nil, identity.ErrMissingSubject
	}

	user := &models.User{
		ID:          principal.Subject,
		Name:        principal.DisplayName(),
		Email:       principal.Email,
		IsStaff:     principal.IsStaff,
		IsSuperuser: principal.IsSuperuser,
		IsActive:    true,
		LastSeenAt:  &now,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "is_staff", "is_superuser", "is_active", "last_seen_at", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetStaffUser retrieves a mirrored staff account
func GetStaffUser(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
