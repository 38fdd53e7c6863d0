package services

import (
	"errors"
	"strings"

	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/i18n"

	"gorm.io/gorm"
)

// DefaultPageSize is the page size of the public news and services listings
const DefaultPageSize = 9

// Searchable attributes per catalog. Each expands to one column per locale.
var (
	serviceSearchAttributes = []string{"title", "excerpt", "description"}
	newsSearchAttributes    = []string{"title", "excerpt"}
	teamSearchAttributes    = []string{"name", "position", "bio"}
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// normalizePage clamps page to >= 1 and size to (0, 100], using def when size is unset
func normalizePage(page, size, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = def
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// TotalPages returns the number of pages needed for total rows
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// searchScope matches term case-insensitively against every locale column of the attributes
func searchScope(term string, attributes ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"

		var clauses []string
		var args []interface{}
		for _, attr := range attributes {
			for _, col := range i18n.Columns(attr) {
				clauses = append(clauses, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
				args = append(args, pattern)
			}
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// paginate applies offset and limit for a 1-based page
func paginate(page, size int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * size).Limit(size)
	}
}

// notFound maps gorm's missing-record error to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// requireFallbackText checks that the fallback-locale value of each attribute is filled in
func requireFallbackText(entity i18n.Multilingual, verr *ValidationError, attributes ...string) {
	fallback := i18n.Fallback()
	fields := entity.LocalizedFields()
	for _, attr := range attributes {
		if strings.TrimSpace(fields[attr][fallback]) == "" {
			verr.Add(attr+"_"+fallback, "This field is required.")
		}
	}
}

// cleanLocalized strips markup from plain per-locale columns in place
func cleanLocalized(values ...*string) {
	for _, v := range values {
		*v = models.PlainText(*v)
	}
}

// cleanRichText sanitizes rich-text per-locale columns in place
func cleanRichText(values ...*string) {
	for _, v := range values {
		*v = models.SafeHTML(*v)
	}
}
