package services

import (
	"errors"

	"github.com/prog-Noon/rakaizfoundation/metrics"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/i18n"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"gorm.io/gorm"
)

// RelatedNewsLimit is the number of related articles shown under an article
const RelatedNewsLimit = 3

// NewsFilters holds filter options for the public news listing
type NewsFilters struct {
	Search       string
	CategoryID   string
	FeaturedOnly bool
}

// StaffNewsFilters holds filter options for the staff news listing
type StaffNewsFilters struct {
	Search     string
	CategoryID string
	Status     string // "published", "draft" or empty for all
}

const newsOrder = "published_at DESC, created_at DESC"

func publishedNews(db *gorm.DB) *gorm.DB {
	return db.Model(&models.News{}).Where("is_published = ?", true)
}

// ListPublishedNews returns one page of published articles, newest first
func ListPublishedNews(db *gorm.DB, filters NewsFilters, page, pageSize int) ([]models.News, int64, error) {
	page, pageSize = normalizePage(page, pageSize, DefaultPageSize)

	query := publishedNews(db).Scopes(searchScope(filters.Search, newsSearchAttributes...))
	if filters.CategoryID != "" {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var news []models.News
	err := query.Preload("Category").
		Preload("Author").
		Order(newsOrder).
		Scopes(paginate(page, pageSize)).
		Find(&news).Error
	return news, total, err
}

// ListNewsByCategory lists published articles of an active category
func ListNewsByCategory(db *gorm.DB, categoryID string, page, pageSize int) (*models.NewsCategory, []models.News, int64, error) {
	category, err := GetActiveNewsCategory(db, categoryID)
	if err != nil {
		return nil, nil, 0, err
	}
	news, total, err := ListPublishedNews(db, NewsFilters{CategoryID: category.ID}, page, pageSize)
	return category, news, total, err
}

// FeaturedNews returns the newest featured articles
func FeaturedNews(db *gorm.DB, limit int) ([]models.News, error) {
	var news []models.News
	err := publishedNews(db).
		Where("is_featured = ?", true).
		Preload("Category").
		Order(newsOrder).
		Limit(limit).
		Find(&news).Error
	return news, err
}

// GetPublishedNews retrieves a published article
func GetPublishedNews(db *gorm.DB, id string) (*models.News, error) {
	var news models.News
	err := db.Preload("Category").
		Preload("Author").
		Where("id = ? AND is_published = ?", id, true).
		First(&news).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &news, nil
}

// ViewNews records a detail view and returns the article
func ViewNews(db *gorm.DB, id string) (*models.News, error) {
	result := db.Model(&models.News{}).
		Where("id = ? AND is_published = ?", id, true).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	metrics.RecordContentView("news")
	return GetPublishedNews(db, id)
}

// RelatedNews returns other published articles of the same category
func RelatedNews(db *gorm.DB, news *models.News, limit int) ([]models.News, error) {
	var related []models.News
	err := publishedNews(db).
		Where("category_id = ? AND id <> ?", news.CategoryID, news.ID).
		Order(newsOrder).
		Limit(limit).
		Find(&related).Error
	return related, err
}

// ListActiveNewsCategories returns the active news categories
func ListActiveNewsCategories(db *gorm.DB) ([]models.NewsCategory, error) {
	var categories []models.NewsCategory
	err := db.Where("is_active = ?", true).Order("name_" + i18n.Fallback() + " ASC").Find(&categories).Error
	return categories, err
}

// GetActiveNewsCategory retrieves an active news category
func GetActiveNewsCategory(db *gorm.DB, id string) (*models.NewsCategory, error) {
	var category models.NewsCategory
	if err := db.Where("id = ? AND is_active = ?", id, true).First(&category).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

// ListNewsForStaff lists articles including drafts
func ListNewsForStaff(db *gorm.DB, filters StaffNewsFilters, page, pageSize int) ([]models.News, int64, error) {
	page, pageSize = normalizePage(page, pageSize, StaffPageSize)

	query := db.Model(&models.News{}).Scopes(searchScope(filters.Search, newsSearchAttributes...))
	if filters.CategoryID != "" {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	switch filters.Status {
	case "published":
		query = query.Where("is_published = ?", true)
	case "draft":
		query = query.Where("is_published = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var news []models.News
	err := query.Preload("Category").
		Preload("Author").
		Order(newsOrder).
		Scopes(paginate(page, pageSize)).
		Find(&news).Error
	return news, total, err
}

// GetNewsForStaff retrieves an article including drafts
func GetNewsForStaff(db *gorm.DB, id string) (*models.News, error) {
	var news models.News
	if err := db.Preload("Category").Preload("Author").First(&news, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &news, nil
}

func prepareNews(db *gorm.DB, n *models.News) error {
	cleanLocalized(&n.TitleAr, &n.TitleEn, &n.TitleTr)
	cleanRichText(&n.ContentAr, &n.ContentEn, &n.ContentTr)
	cleanLocalized(&n.ExcerptAr, &n.ExcerptEn, &n.ExcerptTr)

	verr := NewValidationError()
	requireFallbackText(n, verr, "title", "content")

	if n.CategoryID == "" {
		verr.Add("category_id", "This field is required.")
	} else {
		var count int64
		if err := db.Model(&models.NewsCategory{}).Where("id = ?", n.CategoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			verr.Add("category_id", "Select a valid choice.")
		}
	}
	return verr.errOrNil()
}

// CreateNews publishes or drafts an article authored by the acting staff member
func CreateNews(db *gorm.DB, actor *identity.Principal, audit AuditContext, n *models.News) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	n.ID = ""
	n.Views = 0
	n.AuthorID = actor.Subject
	n.Author = nil
	n.Category = nil
	if err := prepareNews(db, n); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionCreate,
			ResourceType: models.AuditResourceNews,
			ResourceID:   n.ID,
			ResourceName: n.TitleAr,
			NewValues:    n,
		})
	})
}

// UpdateNews replaces the editable fields of an article; author and views are kept
func UpdateNews(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string, input *models.News) (*models.News, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	existing, err := GetNewsForStaff(db, id)
	if err != nil {
		return nil, err
	}
	old := *existing

	input.ID = existing.ID
	input.CreatedAt = existing.CreatedAt
	input.AuthorID = existing.AuthorID
	input.Views = existing.Views
	input.Author = nil
	input.Category = nil
	if input.PublishedAt.IsZero() {
		input.PublishedAt = existing.PublishedAt
	}
	if err := prepareNews(db, input); err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(existing).Select("*").Omit("id", "created_at", "author_id", "views").Updates(input).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionUpdate,
			ResourceType: models.AuditResourceNews,
			ResourceID:   existing.ID,
			ResourceName: input.TitleAr,
			OldValues:    old,
			NewValues:    input,
		})
	})
	if err != nil {
		return nil, err
	}
	ReleaseMedia(old.FeaturedImage, input.FeaturedImage)
	return GetNewsForStaff(db, id)
}

// DeleteNews removes an article
func DeleteNews(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	var existing models.News
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionDelete,
			ResourceType: models.AuditResourceNews,
			ResourceID:   id,
			ResourceName: existing.TitleAr,
			OldValues:    existing,
		})
	})
	if err != nil {
		return err
	}
	ReleaseMedia(existing.FeaturedImage, "")
	return nil
}

// ListNewsCategoriesForStaff returns every news category
func ListNewsCategoriesForStaff(db *gorm.DB) ([]models.NewsCategory, error) {
	var categories []models.NewsCategory
	err := db.Order("name_" + i18n.Fallback() + " ASC").Find(&categories).Error
	return categories, err
}

// SaveNewsCategory creates the category when id is empty and updates it otherwise
func SaveNewsCategory(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string, c *models.NewsCategory) (*models.NewsCategory, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	cleanLocalized(&c.NameAr, &c.NameEn, &c.NameTr)
	verr := NewValidationError()
	requireFallbackText(c, verr, "name")
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		entry := AuditEntry{ResourceType: models.AuditResourceNewsCategory, ResourceName: c.NameAr, NewValues: c}
		if id == "" {
			c.ID = ""
			if err := tx.Create(c).Error; err != nil {
				return err
			}
			entry.Action = models.AuditActionCreate
		} else {
			var existing models.NewsCategory
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

// ErrCategoryInUse is returned when deleting a news category that still has articles
var ErrCategoryInUse = errors.New("category still has articles")

// DeleteNewsCategory removes an empty news category
func DeleteNewsCategory(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.NewsCategory
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		var articles int64
		if err := tx.Model(&models.News{}).Where("category_id = ?", id).Count(&articles).Error; err != nil {
			return err
		}
		if articles > 0 {
			return ErrCategoryInUse
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionDelete,
			ResourceType: models.AuditResourceNewsCategory,
			ResourceID:   id,
			ResourceName: existing.NameAr,
			OldValues:    existing,
		})
	})
}
