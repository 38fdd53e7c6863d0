package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prog-Noon/rakaizfoundation/metrics"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"gorm.io/gorm"
)

// TriageAction is a staff action on contact messages
type TriageAction string

const (
	TriageMarkRead    TriageAction = "read"
	TriageMarkUnread  TriageAction = "unread"
	TriageMarkReplied TriageAction = "replied"
)

// ErrInvalidTriageAction is returned for an unknown triage action
var ErrInvalidTriageAction = errors.New("invalid triage action")

// IsValid reports whether the action is known
func (a TriageAction) IsValid() bool {
	switch a {
	case TriageMarkRead, TriageMarkUnread, TriageMarkReplied:
		return true
	}
	return false
}

// triageQuery returns the condition selecting the messages the action would change, and the new flags.
// Unread only applies to messages not yet replied so that replied always implies read.
func (a TriageAction) triageQuery() (string, []interface{}, map[string]interface{}) {
	switch a {
	case TriageMarkRead:
		return "is_read = ?", []interface{}{false}, map[string]interface{}{"is_read": true}
	case TriageMarkUnread:
		return "is_read = ? AND is_replied = ?", []interface{}{true, false}, map[string]interface{}{"is_read": false}
	default:
		return "is_replied = ?", []interface{}{false}, map[string]interface{}{"is_read": true, "is_replied": true}
	}
}

// MessageFilters holds filter options for the staff message listing
type MessageFilters struct {
	Search      string
	State       string // "unread", "read", "replied", "unreplied" or empty for all
	ContactType string
	DateFrom    *time.Time
	DateTo      *time.Time
}

// MessageCounts summarizes the triage state of all messages
type MessageCounts struct {
	Total   int64 `json:"total"`
	Unread  int64 `json:"unread"`
	Replied int64 `json:"replied"`
}

func messageScope(filters MessageFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch filters.State {
		case "unread":
			db = db.Where("is_read = ?", false)
		case "read":
			db = db.Where("is_read = ?", true)
		case "replied":
			db = db.Where("is_replied = ?", true)
		case "unreplied":
			db = db.Where("is_replied = ?", false)
		}
		if filters.ContactType != "" {
			db = db.Where("contact_type = ?", filters.ContactType)
		}
		if filters.DateFrom != nil {
			db = db.Where("created_at >= ?", *filters.DateFrom)
		}
		if filters.DateTo != nil {
			db = db.Where("created_at <= ?", *filters.DateTo)
		}
		if term := strings.TrimSpace(filters.Search); term != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
			db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(subject) LIKE ? ESCAPE '\' OR LOWER(message) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern, pattern)
		}
		return db
	}
}

// ListContactMessages returns one page of messages, newest first
func ListContactMessages(db *gorm.DB, filters MessageFilters, page, pageSize int) ([]models.ContactMessage, int64, error) {
	page, pageSize = normalizePage(page, pageSize, StaffPageSize)
	query := db.Model(&models.ContactMessage{}).Scopes(messageScope(filters))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.ContactMessage
	err := query.Order("created_at DESC").Scopes(paginate(page, pageSize)).Find(&messages).Error
	return messages, total, err
}

// CountMessages returns total, unread and replied message counts
func CountMessages(db *gorm.DB) (MessageCounts, error) {
	var counts MessageCounts
	err := db.Model(&models.ContactMessage{}).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN is_read = false THEN 1 ELSE 0 END), 0) AS unread, " +
			"COALESCE(SUM(CASE WHEN is_replied = true THEN 1 ELSE 0 END), 0) AS replied").
		Scan(&counts).Error
	return counts, err
}

// GetContactMessageForStaff retrieves a message and marks it read on first view
func GetContactMessageForStaff(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string) (*models.ContactMessage, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	var msg models.ContactMessage
	if err := db.First(&msg, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	if msg.IsRead {
		return &msg, nil
	}

	if _, err := TriageMessages(db, actor, audit, []string{id}, TriageMarkRead); err != nil {
		return nil, err
	}
	msg.IsRead = true
	return &msg, nil
}

// TriageMessages applies action to every selected message it would change. Messages already in the
// target state are skipped, so repeating an action is harmless.
func TriageMessages(db *gorm.DB, actor *identity.Principal, audit AuditContext, ids []string, action TriageAction) (BulkResult, error) {
	if err := requireStaff(actor); err != nil {
		return BulkResult{}, err
	}
	if !action.IsValid() {
		return BulkResult{}, ErrInvalidTriageAction
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return BulkResult{}, ErrNoRecordsSelected
	}

	condition, args, updates := action.triageQuery()

	var result BulkResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var candidates []models.ContactMessage
		if err := tx.Where("id IN ?", ids).Where(condition, args...).Find(&candidates).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		candidateIDs := make([]string, len(candidates))
		entries := make([]AuditEntry, len(candidates))
		for i, msg := range candidates {
			candidateIDs[i] = msg.ID
			entries[i] = AuditEntry{
				Action:       models.AuditActionTriage,
				ResourceType: models.AuditResourceContactMessage,
				ResourceID:   msg.ID,
				ResourceName: msg.Subject,
				Description:  "Marked " + string(action),
				OldValues:    map[string]bool{"is_read": msg.IsRead, "is_replied": msg.IsReplied},
				NewValues:    updates,
			}
		}

		res := tx.Model(&models.ContactMessage{}).
			Where("id IN ?", candidateIDs).
			Where(condition, args...).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update messages: %w", res.Error)
		}
		result.Updated = res.RowsAffected
		return RecordAudit(tx, audit, entries...)
	})
	if err != nil {
		return BulkResult{}, err
	}

	result.Skipped = int64(len(ids)) - result.Updated
	metrics.RecordTriageAction(models.AuditResourceContactMessage, string(action), result.Updated)
	return result, nil
}

// DeleteContactMessage removes a message. Only superusers may delete.
func DeleteContactMessage(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string) error {
	if err := requireSuperuser(actor); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.ContactMessage
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionDelete,
			ResourceType: models.AuditResourceContactMessage,
			ResourceID:   id,
			ResourceName: existing.Subject,
			OldValues:    existing,
		})
	})
}
