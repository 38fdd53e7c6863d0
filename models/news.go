package models

import (
	"time"

	"github.com/prog-Noon/rakaizfoundation/i18n"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewsCategory groups news articles
type NewsCategory struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NameAr   string `gorm:"not null" json:"name_ar"`
	NameEn   string `json:"name_en"`
	NameTr   string `json:"name_tr"`
	IsActive bool   `gorm:"not null;index" json:"is_active"`
}

// NewNewsCategory returns a category with the column defaults applied
func NewNewsCategory() *NewsCategory {
	return &NewsCategory{IsActive: true}
}

// BeforeCreate hook to generate UUID
func (c *NewsCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for NewsCategory model
func (NewsCategory) TableName() string {
	return "news_categories"
}

// LocalizedFields implements i18n.Multilingual
func (c *NewsCategory) LocalizedFields() map[string]i18n.LocalizedText {
	return map[string]i18n.LocalizedText{
		"name": i18n.Text(c.NameAr, c.NameEn, c.NameTr),
	}
}

func (c *NewsCategory) Name(locale string) string {
	return i18n.Text(c.NameAr, c.NameEn, c.NameTr).Resolve(locale, i18n.Fallback())
}

// News is a published article
type News struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TitleAr   string `gorm:"not null" json:"title_ar"`
	TitleEn   string `json:"title_en"`
	TitleTr   string `json:"title_tr"`
	ContentAr string `gorm:"type:text" json:"content_ar"`
	ContentEn string `gorm:"type:text" json:"content_en"`
	ContentTr string `gorm:"type:text" json:"content_tr"`
	ExcerptAr string `gorm:"type:text" json:"excerpt_ar"`
	ExcerptEn string `gorm:"type:text" json:"excerpt_en"`
	ExcerptTr string `gorm:"type:text" json:"excerpt_tr"`

	FeaturedImage string `json:"featured_image"` // storage key

	CategoryID string        `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   *NewsCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	PublishedAt time.Time `gorm:"not null;index" json:"published_at"`
	IsPublished bool      `gorm:"not null;index" json:"is_published"`
	IsFeatured  bool      `gorm:"not null" json:"is_featured"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
}

// NewNews returns an article with the column defaults applied
func NewNews() *News {
	return &News{IsPublished: true}
}

// BeforeCreate hook to generate UUID and default the publication date
func (n *News) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.PublishedAt.IsZero() {
		n.PublishedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for News model
func (News) TableName() string {
	return "news"
}

// LocalizedFields implements i18n.Multilingual
func (n *News) LocalizedFields() map[string]i18n.LocalizedText {
	return map[string]i18n.LocalizedText{
		"title":   i18n.Text(n.TitleAr, n.TitleEn, n.TitleTr),
		"content": i18n.Text(n.ContentAr, n.ContentEn, n.ContentTr),
		"excerpt": i18n.Text(n.ExcerptAr, n.ExcerptEn, n.ExcerptTr),
	}
}

func (n *News) Title(locale string) string {
	return i18n.Text(n.TitleAr, n.TitleEn, n.TitleTr).Resolve(locale, i18n.Fallback())
}

func (n *News) Content(locale string) string {
	return i18n.Text(n.ContentAr, n.ContentEn, n.ContentTr).Resolve(locale, i18n.Fallback())
}

// Excerpt returns the stored excerpt, or a summary of the content when none is stored
func (n *News) Excerpt(locale string) string {
	if excerpt := i18n.Text(n.ExcerptAr, n.ExcerptEn, n.ExcerptTr).Resolve(locale, i18n.Fallback()); excerpt != "" {
		return excerpt
	}
	return Summarize(n.Content(locale), ExcerptLength)
}
