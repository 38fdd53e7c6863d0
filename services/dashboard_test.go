package services

import (
	"testing"
	"time"

	"github.com/prog-Noon/rakaizfoundation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()

	active := createService(t, db, "نشط", true)
	createService(t, db, "متوقف", false)
	createRequest(t, db, active.ID, models.RequestStatusPending, now.Add(-time.Hour))
	createRequest(t, db, active.ID, models.RequestStatusCompleted, now.AddDate(0, 0, -10))
	createRequest(t, db, active.ID, models.RequestStatusCompleted, now.AddDate(0, 0, -60))
	createMessage(t, db, false, false, now.Add(-time.Hour))
	createMessage(t, db, true, true, now.AddDate(0, 0, -20))
	require.NoError(t, db.Create(&models.User{ID: "staff-1", Name: "Staff", IsStaff: true, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.User{ID: "other", Name: "Other"}).Error)

	stats, err := GetDashboardStats(db, now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalServices)
	assert.Equal(t, int64(1), stats.ActiveServices)
	assert.Equal(t, int64(3), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.PendingRequests)
	assert.Equal(t, int64(2), stats.RequestsByStatus[models.RequestStatusCompleted])
	assert.Equal(t, int64(0), stats.RequestsByStatus[models.RequestStatusCancelled])
	assert.Equal(t, int64(2), stats.TotalMessages)
	assert.Equal(t, int64(1), stats.UnreadMessages)
	assert.Equal(t, int64(1), stats.TotalStaffUsers)
	assert.Equal(t, int64(1), stats.NewRequestsWeek)
	assert.Equal(t, int64(2), stats.NewRequestsMonth)
	assert.Equal(t, int64(1), stats.NewMessagesWeek)
	assert.Equal(t, int64(2), stats.NewMessagesMonth)
}

func TestGetDailySeries(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 10, 18, 15, 0, 0, 0, time.Local)

	createMessage(t, db, false, false, now.Add(-time.Hour))
	createMessage(t, db, false, false, now.Add(-2*time.Hour))
	createMessage(t, db, false, false, now.AddDate(0, 0, -3))
	createMessage(t, db, false, false, now.AddDate(0, 0, -8))

	series, err := GetDailySeries(db, MetricMessages, 7, now)
	require.NoError(t, err)
	require.Len(t, series.Points, 7)

	assert.Equal(t, "2026-10-12", series.Points[0].Label)
	assert.Equal(t, "2026-10-18", series.Points[6].Label)
	assert.Equal(t, int64(2), series.Points[6].Count)
	assert.Equal(t, int64(1), series.Points[3].Count)

	var total int64
	for _, p := range series.Points {
		total += p.Count
	}
	assert.Equal(t, int64(3), total)

	month, err := GetDailySeries(db, MetricMessages, 30, now)
	require.NoError(t, err)
	assert.Len(t, month.Points, 30)

	_, err = GetDailySeries(db, "visitors", 7, now)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestGetMonthlySeries(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	service := createService(t, db, "خدمة", true)

	createRequest(t, db, service.ID, models.RequestStatusPending, now)
	createRequest(t, db, service.ID, models.RequestStatusPending, time.Date(2025, 12, 31, 23, 0, 0, 0, time.Local))
	createRequest(t, db, service.ID, models.RequestStatusPending, time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local))

	series, err := GetMonthlySeries(db, MetricRequests, 12, now)
	require.NoError(t, err)
	require.Len(t, series.Points, 12)

	assert.Equal(t, "2025-04", series.Points[0].Label)
	assert.Equal(t, "2026-03", series.Points[11].Label)
	assert.Equal(t, int64(1), series.Points[11].Count)
	assert.Equal(t, "2025-12", series.Points[8].Label)
	assert.Equal(t, int64(1), series.Points[8].Count)
	assert.Equal(t, int64(0), series.Points[0].Count)
}

func TestGetRecentActivity(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	service := createService(t, db, "خدمة", true)

	for i := 0; i < 8; i++ {
		createMessage(t, db, false, false, now.Add(-time.Duration(2*i)*time.Minute))
		createRequest(t, db, service.ID, models.RequestStatusPending, now.Add(-time.Duration(2*i+1)*time.Minute))
	}

	items, err := GetRecentActivity(db, 0, "ar")
	require.NoError(t, err)
	require.Len(t, items, DefaultActivityLimit)

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].CreatedAt.After(items[i-1].CreatedAt))
	}
	assert.Equal(t, "message", items[0].Type)
	assert.Equal(t, "request", items[1].Type)
	assert.Equal(t, "خدمة", items[1].Title)

	few, err := GetRecentActivity(db, 3, "en")
	require.NoError(t, err)
	assert.Len(t, few, 3)
}

func TestGetServiceRequestBreakdown(t *testing.T) {
	db := setupTestDB(t)
	busy := createService(t, db, "مزدحم", true)
	quiet := createService(t, db, "هادئ", true)

	createRequest(t, db, busy.ID, models.RequestStatusPending, time.Now())
	createRequest(t, db, busy.ID, models.RequestStatusCompleted, time.Now())
	createRequest(t, db, busy.ID, models.RequestStatusCancelled, time.Now())

	breakdown, err := GetServiceRequestBreakdown(db)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)

	assert.Equal(t, busy.ID, breakdown[0].Service.ID)
	assert.Equal(t, ServiceRequestCounts{Total: 3, Pending: 1, Completed: 1}, breakdown[0].Counts)
	assert.Equal(t, quiet.ID, breakdown[1].Service.ID)
	assert.Equal(t, ServiceRequestCounts{}, breakdown[1].Counts)
}

func TestGetNewsCountByCategory(t *testing.T) {
	db := setupTestDB(t)
	events := &models.NewsCategory{NameAr: "فعاليات", IsActive: true}
	empty := &models.NewsCategory{NameAr: "فارغ", IsActive: true}
	require.NoError(t, db.Create(events).Error)
	require.NoError(t, db.Create(empty).Error)
	require.NoError(t, db.Create(&models.User{ID: "author"}).Error)

	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.News{TitleAr: "خبر", CategoryID: events.ID, AuthorID: "author"}).Error)
	}

	counts, err := GetNewsCountByCategory(db)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	byID := map[string]int64{}
	for _, c := range counts {
		byID[c.Category.ID] = c.Count
	}
	assert.Equal(t, int64(2), byID[events.ID])
	assert.Equal(t, int64(0), byID[empty.ID])
}
