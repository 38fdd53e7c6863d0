package models

import (
	"time"

	"github.com/prog-Noon/rakaizfoundation/i18n"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExcerptLength is the length of the summary derived from a description when no excerpt is set
const ExcerptLength = 150

// ServiceCategory groups services on the public site
type ServiceCategory struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NameAr        string `gorm:"not null" json:"name_ar"`
	NameEn        string `json:"name_en"`
	NameTr        string `json:"name_tr"`
	DescriptionAr string `gorm:"type:text" json:"description_ar"`
	DescriptionEn string `gorm:"type:text" json:"description_en"`
	DescriptionTr string `gorm:"type:text" json:"description_tr"`

	Icon      string `json:"icon"`
	Color     string `gorm:"not null;default:'#6b73ff'" json:"color"`
	IsActive  bool   `gorm:"not null;index" json:"is_active"`
	SortOrder int    `gorm:"not null;default:0" json:"order"`
}

// NewServiceCategory returns a category with the column defaults applied
func NewServiceCategory() *ServiceCategory {
	return &ServiceCategory{IsActive: true}
}

// BeforeCreate hook to generate UUID
func (c *ServiceCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ServiceCategory model
func (ServiceCategory) TableName() string {
	return "service_categories"
}

// LocalizedFields implements i18n.Multilingual
func (c *ServiceCategory) LocalizedFields() map[string]i18n.LocalizedText {
	return map[string]i18n.LocalizedText{
		"name":        i18n.Text(c.NameAr, c.NameEn, c.NameTr),
		"description": i18n.Text(c.DescriptionAr, c.DescriptionEn, c.DescriptionTr),
	}
}

func (c *ServiceCategory) Name(locale string) string {
	return i18n.Text(c.NameAr, c.NameEn, c.NameTr).Resolve(locale, i18n.Fallback())
}

func (c *ServiceCategory) Description(locale string) string {
	return i18n.Text(c.DescriptionAr, c.DescriptionEn, c.DescriptionTr).Resolve(locale, i18n.Fallback())
}

// Service is a program the foundation offers to visitors
type Service struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TitleAr       string `gorm:"not null" json:"title_ar"`
	TitleEn       string `json:"title_en"`
	TitleTr       string `json:"title_tr"`
	DescriptionAr string `gorm:"type:text" json:"description_ar"`
	DescriptionEn string `gorm:"type:text" json:"description_en"`
	DescriptionTr string `gorm:"type:text" json:"description_tr"`
	ExcerptAr     string `json:"excerpt_ar"`
	ExcerptEn     string `json:"excerpt_en"`
	ExcerptTr     string `json:"excerpt_tr"`

	Image string `json:"image"` // storage key
	Icon  string `json:"icon"`

	CategoryID *string          `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category   *ServiceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Duration       string     `json:"duration"`
	TargetAudience string     `json:"target_audience"`
	Prerequisites  string     `gorm:"type:text" json:"prerequisites"`
	Features       StringList `gorm:"type:text" json:"features"`

	IsFree     bool   `gorm:"not null" json:"is_free"`
	Cost       string `json:"cost"`
	IsActive   bool   `gorm:"not null;index" json:"is_active"`
	IsFeatured bool   `gorm:"not null" json:"is_featured"`
	SortOrder  int    `gorm:"not null;default:0" json:"order"`
	Views      int64  `gorm:"not null;default:0" json:"views"`
}

// NewService returns a service with the column defaults applied.
// Booleans are set here rather than in gorm tags, which would skip an explicit false on insert.
func NewService() *Service {
	return &Service{IsFree: true, IsActive: true}
}

// BeforeCreate hook to generate UUID
func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Service model
func (Service) TableName() string {
	return "services"
}

// LocalizedFields implements i18n.Multilingual
func (s *Service) LocalizedFields() map[string]i18n.LocalizedText {
	return map[string]i18n.LocalizedText{
		"title":       i18n.Text(s.TitleAr, s.TitleEn, s.TitleTr),
		"description": i18n.Text(s.DescriptionAr, s.DescriptionEn, s.DescriptionTr),
		"excerpt":     i18n.Text(s.ExcerptAr, s.ExcerptEn, s.ExcerptTr),
	}
}

func (s *Service) Title(locale string) string {
	return i18n.Text(s.TitleAr, s.TitleEn, s.TitleTr).Resolve(locale, i18n.Fallback())
}

func (s *Service) Description(locale string) string {
	return i18n.Text(s.DescriptionAr, s.DescriptionEn, s.DescriptionTr).Resolve(locale, i18n.Fallback())
}

// Excerpt returns the stored excerpt, or a summary of the description when none is stored
func (s *Service) Excerpt(locale string) string {
	if excerpt := i18n.Text(s.ExcerptAr, s.ExcerptEn, s.ExcerptTr).Resolve(locale, i18n.Fallback()); excerpt != "" {
		return excerpt
	}
	return Summarize(s.Description(locale), ExcerptLength)
}
