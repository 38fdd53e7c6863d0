package services

import (
	"testing"
	"time"

	"github.com/prog-Noon/rakaizfoundation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionRequest(t *testing.T) {
	db := setupTestDB(t)
	service := createService(t, db, "خدمة", true)
	created := time.Now().Add(-48 * time.Hour)
	now := time.Now()

	t.Run("Pending to processing leaves response date unset", func(t *testing.T) {
		req := createRequest(t, db, service.ID, models.RequestStatusPending, created)
		updated, err := TransitionRequest(db, staffActor, testAudit, req.ID, models.RequestStatusProcessing, now)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusProcessing, updated.Status)
		assert.Nil(t, updated.ResponseDate)
	})

	t.Run("Completing stamps response date once", func(t *testing.T) {
		req := createRequest(t, db, service.ID, models.RequestStatusProcessing, created)
		updated, err := TransitionRequest(db, staffActor, testAudit, req.ID, models.RequestStatusCompleted, now)
		require.NoError(t, err)
		require.NotNil(t, updated.ResponseDate)
		assert.False(t, updated.ResponseDate.Before(updated.CreatedAt))

		// Re-applying the same status is a no-op
		again, err := TransitionRequest(db, staffActor, testAudit, req.ID, models.RequestStatusCompleted, now.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, again.ResponseDate.Equal(*updated.ResponseDate))
	})

	t.Run("Terminal states reject transitions", func(t *testing.T) {
		for _, status := range []string{models.RequestStatusCompleted, models.RequestStatusCancelled} {
			req := createRequest(t, db, service.ID, status, created)
			_, err := TransitionRequest(db, staffActor, testAudit, req.ID, models.RequestStatusPending, now)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			_, err = TransitionRequest(db, staffActor, testAudit, req.ID, models.RequestStatusProcessing, now)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	})

	t.Run("Processing cannot go back to pending", func(t *testing.T) {
		req := createRequest(t, db, service.ID, models.RequestStatusProcessing, created)
		_, err := TransitionRequest(db, staffActor, testAudit, req.ID, models.RequestStatusPending, now)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Unknown status and missing request", func(t *testing.T) {
		req := createRequest(t, db, service.ID, models.RequestStatusPending, created)
		_, err := TransitionRequest(db, staffActor, testAudit, req.ID, "in_progress", now)
		assert.ErrorIs(t, err, ErrInvalidStatus)

		_, err = TransitionRequest(db, staffActor, testAudit, "missing", models.RequestStatusCompleted, now)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Non-staff callers change nothing", func(t *testing.T) {
		req := createRequest(t, db, service.ID, models.RequestStatusPending, created)
		_, err := TransitionRequest(db, visitor, testAudit, req.ID, models.RequestStatusCompleted, now)
		assert.ErrorIs(t, err, ErrPermissionDenied)
		_, err = TransitionRequest(db, nil, testAudit, req.ID, models.RequestStatusCompleted, now)
		assert.ErrorIs(t, err, ErrPermissionDenied)

		stored, err := GetServiceRequest(db, req.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusPending, stored.Status)
	})
}

func TestTransitionRequestsBulk(t *testing.T) {
	db := setupTestDB(t)
	service := createService(t, db, "خدمة", true)
	created := time.Now().Add(-time.Hour)

	pending := createRequest(t, db, service.ID, models.RequestStatusPending, created)
	processing := createRequest(t, db, service.ID, models.RequestStatusProcessing, created)
	cancelled := createRequest(t, db, service.ID, models.RequestStatusCancelled, created)

	ids := []string{pending.ID, processing.ID, cancelled.ID, "missing", pending.ID}
	result, err := TransitionRequests(db, staffActor, testAudit, ids, models.RequestStatusCompleted, time.Now())
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Updated: 2, Skipped: 2}, result)

	counts, err := CountRequestsByStatus(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.RequestStatusCompleted])
	assert.Equal(t, int64(1), counts[models.RequestStatusCancelled])
	assert.Equal(t, int64(0), counts[models.RequestStatusPending])
	assert.Equal(t, int64(0), counts[models.RequestStatusProcessing])

	// One audit entry per changed request
	logs, err := GetResourceAuditHistory(db, models.AuditResourceServiceRequest, pending.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionStatusChange, logs[0].Action)
	assert.Equal(t, "staff-1", *logs[0].UserID)

	t.Run("Repeating the action is idempotent", func(t *testing.T) {
		result, err := TransitionRequests(db, staffActor, testAudit, ids, models.RequestStatusCompleted, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Updated)
	})

	t.Run("Empty selection", func(t *testing.T) {
		_, err := TransitionRequests(db, staffActor, testAudit, []string{" "}, models.RequestStatusCompleted, time.Now())
		assert.ErrorIs(t, err, ErrNoRecordsSelected)
	})

	t.Run("Nothing can enter pending", func(t *testing.T) {
		result, err := TransitionRequests(db, staffActor, testAudit, []string{processing.ID}, models.RequestStatusPending, time.Now())
		require.NoError(t, err)
		assert.Equal(t, BulkResult{Skipped: 1}, result)
	})
}

func TestSetRequestPriority(t *testing.T) {
	db := setupTestDB(t)
	service := createService(t, db, "خدمة", true)
	a := createRequest(t, db, service.ID, models.RequestStatusCompleted, time.Now())
	b := createRequest(t, db, service.ID, models.RequestStatusPending, time.Now())

	result, err := SetRequestPriority(db, staffActor, testAudit, []string{a.ID, b.ID}, models.RequestPriorityUrgent)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Updated)

	stored, err := GetServiceRequest(db, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPriorityUrgent, stored.Priority)
	assert.Equal(t, models.RequestStatusCompleted, stored.Status)

	_, err = SetRequestPriority(db, staffActor, testAudit, []string{a.ID}, "critical")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestUpdateRequestNotesAndDelete(t *testing.T) {
	db := setupTestDB(t)
	service := createService(t, db, "خدمة", true)
	req := createRequest(t, db, service.ID, models.RequestStatusPending, time.Now())

	updated, err := UpdateRequestNotes(db, staffActor, testAudit, req.ID, "Called back <b>twice</b>")
	require.NoError(t, err)
	require.NotNil(t, updated.AdminNotes)
	assert.Equal(t, "Called back twice", *updated.AdminNotes)

	cleared, err := UpdateRequestNotes(db, staffActor, testAudit, req.ID, "  ")
	require.NoError(t, err)
	assert.Nil(t, cleared.AdminNotes)

	assert.ErrorIs(t, DeleteServiceRequest(db, staffActor, testAudit, req.ID), ErrPermissionDenied)
	require.NoError(t, DeleteServiceRequest(db, superActor, testAudit, req.ID))
	_, err = GetServiceRequest(db, req.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListServiceRequests(t *testing.T) {
	db := setupTestDB(t)
	service := createService(t, db, "خدمة", true)
	old := createRequest(t, db, service.ID, models.RequestStatusPending, time.Now().Add(-2*time.Hour))
	recent := createRequest(t, db, service.ID, models.RequestStatusCompleted, time.Now())
	require.NoError(t, db.Model(recent).Update("email", "special_50%@example.org").Error)

	all, total, err := ListServiceRequests(db, RequestFilters{}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, recent.ID, all[0].ID)
	assert.NotNil(t, all[0].Service)

	pending, _, err := ListServiceRequests(db, RequestFilters{Status: models.RequestStatusPending}, 1, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, old.ID, pending[0].ID)

	found, _, err := ListServiceRequests(db, RequestFilters{Search: "50%"}, 1, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, recent.ID, found[0].ID)
}
