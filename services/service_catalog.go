package services

import (
	"errors"
	"strings"

	"github.com/prog-Noon/rakaizfoundation/metrics"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/i18n"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"gorm.io/gorm"
)

// ErrServiceInUse is returned when deleting a service that still has requests
var ErrServiceInUse = errors.New("service has requests; deactivate it instead")

// ServiceFilters holds filter options for the public services listing
type ServiceFilters struct {
	Search       string
	CategoryID   string
	FeaturedOnly bool
	FreeOnly     bool
}

// StaffServiceFilters holds filter options for the staff services listing
type StaffServiceFilters struct {
	Search     string
	CategoryID string
	Status     string // "active", "inactive" or empty for all
}

// ServiceRequestCounts are live request counts for one service
type ServiceRequestCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

func serviceOrder() string {
	return "sort_order ASC, title_" + i18n.Fallback() + " ASC"
}

func serviceCategoryOrder() string {
	return "sort_order ASC, name_" + i18n.Fallback() + " ASC"
}

// ListActiveServices returns one page of active services
func ListActiveServices(db *gorm.DB, filters ServiceFilters, page, pageSize int) ([]models.Service, int64, error) {
	page, pageSize = normalizePage(page, pageSize, DefaultPageSize)

	query := db.Model(&models.Service{}).
		Where("is_active = ?", true).
		Scopes(searchScope(filters.Search, serviceSearchAttributes...))

	if filters.CategoryID != "" {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filters.FreeOnly {
		query = query.Where("is_free = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []models.Service
	err := query.Preload("Category").
		Order(serviceOrder()).
		Scopes(paginate(page, pageSize)).
		Find(&services).Error
	return services, total, err
}

// ListServicesByCategory lists active services of an active category
func ListServicesByCategory(db *gorm.DB, categoryID string, page, pageSize int) (*models.ServiceCategory, []models.Service, int64, error) {
	category, err := GetActiveServiceCategory(db, categoryID)
	if err != nil {
		return nil, nil, 0, err
	}
	services, total, err := ListActiveServices(db, ServiceFilters{CategoryID: category.ID}, page, pageSize)
	return category, services, total, err
}

// GetActiveService retrieves an active service; inactive services are reported as not found
func GetActiveService(db *gorm.DB, id string) (*models.Service, error) {
	var service models.Service
	err := db.Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&service).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &service, nil
}

// ViewService records a detail view and returns the service
func ViewService(db *gorm.DB, id string) (*models.Service, error) {
	result := db.Model(&models.Service{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	metrics.RecordContentView("services")
	return GetActiveService(db, id)
}

// GetServiceRequestCounts counts the requests filed against a service
func GetServiceRequestCounts(db *gorm.DB, serviceID string) (ServiceRequestCounts, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := db.Model(&models.ServiceRequest{}).
		Select("status, COUNT(*) AS count").
		Where("service_id = ?", serviceID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return ServiceRequestCounts{}, err
	}

	var counts ServiceRequestCounts
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Status {
		case models.RequestStatusPending:
			counts.Pending = row.Count
		case models.RequestStatusCompleted:
			counts.Completed = row.Count
		}
	}
	return counts, nil
}

// ListActiveServiceCategories returns the active categories in display order
func ListActiveServiceCategories(db *gorm.DB) ([]models.ServiceCategory, error) {
	var categories []models.ServiceCategory
	err := db.Where("is_active = ?", true).Order(serviceCategoryOrder()).Find(&categories).Error
	return categories, err
}

// GetActiveServiceCategory retrieves an active category
func GetActiveServiceCategory(db *gorm.DB, id string) (*models.ServiceCategory, error) {
	var category models.ServiceCategory
	if err := db.Where("id = ? AND is_active = ?", id, true).First(&category).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

// ListServicesForStaff lists services regardless of visibility
func ListServicesForStaff(db *gorm.DB, filters StaffServiceFilters, page, pageSize int) ([]models.Service, int64, error) {
	page, pageSize = normalizePage(page, pageSize, StaffPageSize)

	query := db.Model(&models.Service{}).Scopes(searchScope(filters.Search, serviceSearchAttributes...))
	if filters.CategoryID != "" {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	switch filters.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []models.Service
	err := query.Preload("Category").
		Order(serviceOrder()).
		Scopes(paginate(page, pageSize)).
		Find(&services).Error
	return services, total, err
}

// GetServiceForStaff retrieves a service regardless of visibility
func GetServiceForStaff(db *gorm.DB, id string) (*models.Service, error) {
	var service models.Service
	if err := db.Preload("Category").First(&service, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &service, nil
}

func prepareService(db *gorm.DB, s *models.Service) error {
	cleanLocalized(&s.TitleAr, &s.TitleEn, &s.TitleTr, &s.ExcerptAr, &s.ExcerptEn, &s.ExcerptTr)
	cleanRichText(&s.DescriptionAr, &s.DescriptionEn, &s.DescriptionTr)
	cleanLocalized(&s.Duration, &s.TargetAudience, &s.Prerequisites, &s.Cost, &s.Icon)

	features := make(models.StringList, 0, len(s.Features))
	for _, f := range s.Features {
		if f = models.PlainText(f); f != "" {
			features = append(features, f)
		}
	}
	s.Features = features

	verr := NewValidationError()
	requireFallbackText(s, verr, "title")

	if s.CategoryID != nil && strings.TrimSpace(*s.CategoryID) == "" {
		s.CategoryID = nil
	}
	if s.CategoryID != nil {
		var count int64
		if err := db.Model(&models.ServiceCategory{}).Where("id = ?", *s.CategoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			verr.Add("category_id", "Select a valid choice.")
		}
	}
	return verr.errOrNil()
}

// CreateService adds a service to the catalog
func CreateService(db *gorm.DB, actor *identity.Principal, audit AuditContext, s *models.Service) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	s.ID = ""
	s.Views = 0
	s.Category = nil
	if err := prepareService(db, s); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionCreate,
			ResourceType: models.AuditResourceService,
			ResourceID:   s.ID,
			ResourceName: s.TitleAr,
			NewValues:    s,
		})
	})
}

// UpdateService replaces the editable fields of a service
func UpdateService(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string, input *models.Service) (*models.Service, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	existing, err := GetServiceForStaff(db, id)
	if err != nil {
		return nil, err
	}
	old := *existing

	input.ID = existing.ID
	input.CreatedAt = existing.CreatedAt
	input.Views = existing.Views
	input.Category = nil
	if err := prepareService(db, input); err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Views is maintained by ViewService only
		if err := tx.Model(existing).Select("*").Omit("id", "created_at", "views").Updates(input).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionUpdate,
			ResourceType: models.AuditResourceService,
			ResourceID:   existing.ID,
			ResourceName: input.TitleAr,
			OldValues:    old,
			NewValues:    input,
		})
	})
	if err != nil {
		return nil, err
	}
	ReleaseMedia(old.Image, input.Image)
	return GetServiceForStaff(db, id)
}

// DeleteService removes a service without requests
func DeleteService(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	existing, err := GetServiceForStaff(db, id)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var requests int64
		if err := tx.Model(&models.ServiceRequest{}).Where("service_id = ?", id).Count(&requests).Error; err != nil {
			return err
		}
		if requests > 0 {
			return ErrServiceInUse
		}
		if err := tx.Delete(&models.Service{}, "id = ?", id).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionDelete,
			ResourceType: models.AuditResourceService,
			ResourceID:   id,
			ResourceName: existing.TitleAr,
			OldValues:    existing,
		})
	})
	if err != nil {
		return err
	}
	ReleaseMedia(existing.Image, "")
	return nil
}

// ListServiceCategoriesForStaff returns every category in display order
func ListServiceCategoriesForStaff(db *gorm.DB) ([]models.ServiceCategory, error) {
	var categories []models.ServiceCategory
	err := db.Order(serviceCategoryOrder()).Find(&categories).Error
	return categories, err
}

func prepareServiceCategory(c *models.ServiceCategory) error {
	cleanLocalized(&c.NameAr, &c.NameEn, &c.NameTr, &c.Icon, &c.Color)
	cleanRichText(&c.DescriptionAr, &c.DescriptionEn, &c.DescriptionTr)

	verr := NewValidationError()
	requireFallbackText(c, verr, "name")
	return verr.errOrNil()
}

// SaveServiceCategory creates the category when id is empty and updates it otherwise
func SaveServiceCategory(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string, c *models.ServiceCategory) (*models.ServiceCategory, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := prepareServiceCategory(c); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		entry := AuditEntry{ResourceType: models.AuditResourceServiceCategory, ResourceName: c.NameAr, NewValues: c}
		if id == "" {
			c.ID = ""
			if err := tx.Create(c).Error; err != nil {
				return err
			}
			entry.Action = models.AuditActionCreate
		} else {
			var existing models.ServiceCategory
			if err := tx.First(&existing, "id = ?", id).Error; err != nil {
				return notFound(err)
			}
			c.ID = existing.ID
			c.CreatedAt = existing.CreatedAt
			if err := tx.Model(&existing).Select("*").Omit("id", "created_at").Updates(c).Error; err != nil {
				return err
			}
			entry.Action = models.AuditActionUpdate
			entry.OldValues = existing
		}
		entry.ResourceID = c.ID
		return RecordAudit(tx, audit, entry)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteServiceCategory removes a category; its services become uncategorized
func DeleteServiceCategory(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.ServiceCategory
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.Service{}).Where("category_id = ?", id).UpdateColumn("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionDelete,
			ResourceType: models.AuditResourceServiceCategory,
			ResourceID:   id,
			ResourceName: existing.NameAr,
			OldValues:    existing,
		})
	})
}
