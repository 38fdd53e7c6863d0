package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/prog-Noon/rakaizfoundation/metrics"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"gorm.io/gorm"
)

// StaffPageSize is the page size of staff listings
const StaffPageSize = 20

// BulkResult reports how many selected records a bulk action changed
type BulkResult struct {
	Updated int64 `json:"updated"`
	Skipped int64 `json:"skipped"`
}

// RequestFilters holds filter options for the staff request listing
type RequestFilters struct {
	Search    string
	Status    string
	Priority  string
	Kind      string
	ServiceID string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// uniqueIDs drops blanks and duplicates, keeping order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func requestScope(filters RequestFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.Priority != "" {
			db = db.Where("priority = ?", filters.Priority)
		}
		if filters.Kind != "" {
			db = db.Where("kind = ?", filters.Kind)
		}
		if filters.ServiceID != "" {
			db = db.Where("service_id = ?", filters.ServiceID)
		}
		if filters.DateFrom != nil {
			db = db.Where("created_at >= ?", *filters.DateFrom)
		}
		if filters.DateTo != nil {
			db = db.Where("created_at <= ?", *filters.DateTo)
		}
		if term := strings.TrimSpace(filters.Search); term != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
			db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`, pattern, pattern, pattern)
		}
		return db
	}
}

// ListServiceRequests returns one page of requests, newest first
func ListServiceRequests(db *gorm.DB, filters RequestFilters, page, pageSize int) ([]models.ServiceRequest, int64, error) {
	page, pageSize = normalizePage(page, pageSize, StaffPageSize)
	query := db.Model(&models.ServiceRequest{}).Scopes(requestScope(filters))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.ServiceRequest
	err := query.Preload("Service").
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&requests).Error
	return requests, total, err
}

// GetServiceRequest retrieves a request with its service
func GetServiceRequest(db *gorm.DB, id string) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := db.Preload("Service").First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

// CountRequestsByStatus returns the number of requests in every status, including empty ones
func CountRequestsByStatus(db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := db.Model(&models.ServiceRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, 4)
	for _, status := range models.GetRequestStatuses() {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// transitionUpdates builds the column changes for entering status
func transitionUpdates(status string, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if status == models.RequestStatusCompleted {
		// response_date is stamped on the first completion only
		updates["response_date"] = gorm.Expr("COALESCE(response_date, ?)", now)
	}
	return updates
}

// TransitionRequests moves every selected request that may enter status into it.
// Requests already there, in a terminal state, or missing are skipped.
func TransitionRequests(db *gorm.DB, actor *identity.Principal, audit AuditContext, ids []string, status string, now time.Time) (BulkResult, error) {
	if err := requireStaff(actor); err != nil {
		return BulkResult{}, err
	}
	if !models.IsValidRequestStatus(status) {
		return BulkResult{}, ErrInvalidStatus
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return BulkResult{}, ErrNoRecordsSelected
	}
	sources := models.RequestStatusSources(status)
	if len(sources) == 0 {
		// Nothing may enter this status
		return BulkResult{Skipped: int64(len(ids))}, nil
	}

	var result BulkResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var candidates []models.ServiceRequest
		if err := tx.Where("id IN ? AND status IN ?", ids, sources).Find(&candidates).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		candidateIDs := make([]string, len(candidates))
		entries := make([]AuditEntry, len(candidates))
		for i, req := range candidates {
			candidateIDs[i] = req.ID
			entries[i] = AuditEntry{
				Action:       models.AuditActionStatusChange,
				ResourceType: models.AuditResourceServiceRequest,
				ResourceID:   req.ID,
				ResourceName: req.Name,
				Description:  fmt.Sprintf("Status changed from %s to %s", req.Status, status),
				OldValues:    map[string]string{"status": req.Status},
				NewValues:    map[string]string{"status": status},
			}
		}

		res := tx.Model(&models.ServiceRequest{}).
			Where("id IN ? AND status IN ?", candidateIDs, sources).
			Updates(transitionUpdates(status, now))
		if res.Error != nil {
			return fmt.Errorf("failed to update request status: %w", res.Error)
		}
		result.Updated = res.RowsAffected
		return RecordAudit(tx, audit, entries...)
	})
	if err != nil {
		return BulkResult{}, err
	}

	result.Skipped = int64(len(ids)) - result.Updated
	metrics.RecordTriageAction(models.AuditResourceServiceRequest, "status_"+status, result.Updated)
	return result, nil
}

// TransitionRequest moves one request into status. Re-applying the current status is a no-op;
// leaving a terminal status or skipping backwards returns ErrInvalidTransition.
func TransitionRequest(db *gorm.DB, actor *identity.Principal, audit AuditContext, id, status string, now time.Time) (*models.ServiceRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if !models.IsValidRequestStatus(status) {
		return nil, ErrInvalidStatus
	}

	req, err := GetServiceRequest(db, id)
	if err != nil {
		return nil, err
	}
	if req.Status == status {
		return req, nil
	}
	if !models.CanTransitionRequest(req.Status, status) {
		return nil, ErrInvalidTransition
	}

	result, err := TransitionRequests(db, actor, audit, []string{id}, status, now)
	if err != nil {
		return nil, err
	}
	if result.Updated == 0 {
		// Changed by someone else since it was read
		return nil, ErrInvalidTransition
	}
	return GetServiceRequest(db, id)
}

// SetRequestPriority sets the priority of every selected request. Priority is independent of status.
func SetRequestPriority(db *gorm.DB, actor *identity.Principal, audit AuditContext, ids []string, priority string) (BulkResult, error) {
	if err := requireStaff(actor); err != nil {
		return BulkResult{}, err
	}
	if !models.IsValidRequestPriority(priority) {
		return BulkResult{}, ErrInvalidPriority
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return BulkResult{}, ErrNoRecordsSelected
	}

	var result BulkResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var candidates []models.ServiceRequest
		if err := tx.Where("id IN ? AND priority <> ?", ids, priority).Find(&candidates).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		candidateIDs := make([]string, len(candidates))
		entries := make([]AuditEntry, len(candidates))
		for i, req := range candidates {
			candidateIDs[i] = req.ID
			entries[i] = AuditEntry{
				Action:       models.AuditActionUpdate,
				ResourceType: models.AuditResourceServiceRequest,
				ResourceID:   req.ID,
				ResourceName: req.Name,
				Description:  fmt.Sprintf("Priority changed from %s to %s", req.Priority, priority),
				OldValues:    map[string]string{"priority": req.Priority},
				NewValues:    map[string]string{"priority": priority},
			}
		}

		res := tx.Model(&models.ServiceRequest{}).
			Where("id IN ? AND priority <> ?", candidateIDs, priority).
			Update("priority", priority)
		if res.Error != nil {
			return fmt.Errorf("failed to update request priority: %w", res.Error)
		}
		result.Updated = res.RowsAffected
		return RecordAudit(tx, audit, entries...)
	})
	if err != nil {
		return BulkResult{}, err
	}

	result.Skipped = int64(len(ids)) - result.Updated
	metrics.RecordTriageAction(models.AuditResourceServiceRequest, "priority_"+priority, result.Updated)
	return result, nil
}

// UpdateRequestNotes replaces the staff notes of a request. Blank notes clear them.
func UpdateRequestNotes(db *gorm.DB, actor *identity.Principal, audit AuditContext, id, notes string) (*models.ServiceRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	var value *string
	if cleaned := models.PlainText(notes); cleaned != "" {
		value = &cleaned
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.ServiceRequest
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&existing).Update("admin_notes", value).Error; err != nil {
			return fmt.Errorf("failed to update request notes: %w", err)
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionUpdate,
			ResourceType: models.AuditResourceServiceRequest,
			ResourceID:   id,
			ResourceName: existing.Name,
			Description:  "Staff notes updated",
		})
	})
	if err != nil {
		return nil, err
	}
	return GetServiceRequest(db, id)
}

// DeleteServiceRequest removes a request. Only superusers may delete.
func DeleteServiceRequest(db *gorm.DB, actor *identity.Principal, audit AuditContext, id string) error {
	if err := requireSuperuser(actor); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.ServiceRequest
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return RecordAudit(tx, audit, AuditEntry{
			Action:       models.AuditActionDelete,
			ResourceType: models.AuditResourceServiceRequest,
			ResourceID:   id,
			ResourceName: existing.Name,
			OldValues:    existing,
		})
	})
}
