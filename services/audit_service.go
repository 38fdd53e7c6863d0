package services

import (
	"encoding/json"
	"time"

	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	UserID    string
	UserName  string
	UserEmail string
	IPAddress string
	UserAgent string
}

// AuditEntry describes one audited change
type AuditEntry struct {
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	ResourceName string
	Description  string
	OldValues    interface{}
	NewValues    interface{}
}

func (ctx AuditContext) build(entry AuditEntry) models.AuditLog {
	var oldJSON, newJSON string

	if entry.OldValues != nil {
		if bytes, err := json.Marshal(entry.OldValues); err == nil {
			oldJSON = string(bytes)
		}
	}
	if entry.NewValues != nil {
		if bytes, err := json.Marshal(entry.NewValues); err == nil {
			newJSON = string(bytes)
		}
	}

	return models.AuditLog{
		UserID:       ptrIfNotEmpty(ctx.UserID),
		UserName:     ctx.UserName,
		UserEmail:    ctx.UserEmail,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		ResourceName: entry.ResourceName,
		Action:       entry.Action,
		Description:  entry.Description,
		OldValues:    oldJSON,
		NewValues:    newJSON,
		IPAddress:    ctx.IPAddress,
		UserAgent:    ctx.UserAgent,
	}
}

// RecordAudit writes audit entries inside the caller's transaction
func RecordAudit(tx *gorm.DB, ctx AuditContext, entries ...AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	logs := make([]models.AuditLog, len(entries))
	for i, entry := range entries {
		logs[i] = ctx.build(entry)
	}
	return tx.Create(&logs).Error
}

// LogAuditEvent creates a new audit log entry asynchronously
func LogAuditEvent(db *gorm.DB, ctx AuditContext, entry AuditEntry) {
	// Run in goroutine to avoid blocking the request
	go func() {
		auditLog := ctx.build(entry)
		if err := db.Create(&auditLog).Error; err != nil {
			logging.Log.Warn("Failed to create audit log",
				zap.String("resource_type", entry.ResourceType),
				zap.String("resource_id", entry.ResourceID),
				zap.Error(err))
		}
	}()
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// AuditLogFilters holds filter options for the audit log listing
type AuditLogFilters struct {
	UserID       string
	ResourceType string
	Action       string
	DateFrom     *time.Time
	DateTo       *time.Time
}

// GetResourceAuditHistory retrieves the audit history for a specific resource
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// GetAuditLogs retrieves paginated audit logs
func GetAuditLogs(db *gorm.DB, filters AuditLogFilters, page, pageSize int) ([]models.AuditLog, int64, error) {
	query := db.Model(&models.AuditLog{})

	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize, 50)
	var logs []models.AuditLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}
