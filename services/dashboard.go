package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/prog-Noon/rakaizfoundation/models"

	"gorm.io/gorm"
)

// Dashboard series metrics
const (
	MetricMessages = "messages"
	MetricRequests = "requests"
	MetricNews     = "news"
)

// Series granularities and their label layouts
const (
	GranularityDay   = "day"
	GranularityMonth = "month"

	dayLabelLayout   = "2006-01-02"
	monthLabelLayout = "2006-01"
)

// DefaultActivityLimit is the number of recent activity items shown by default
const DefaultActivityLimit = 10

// DashboardStats are point-in-time counts for the staff dashboard
type DashboardStats struct {
	TotalServices    int64            `json:"total_services"`
	ActiveServices   int64            `json:"active_services"`
	TotalNews        int64            `json:"total_news"`
	PublishedNews    int64            `json:"published_news"`
	FeaturedNews     int64            `json:"featured_news"`
	TotalMessages    int64            `json:"total_messages"`
	UnreadMessages   int64            `json:"unread_messages"`
	TotalRequests    int64            `json:"total_requests"`
	PendingRequests  int64            `json:"pending_requests"`
	RequestsByStatus map[string]int64 `json:"requests_by_status"`
	TotalTeamMembers int64            `json:"total_team_members"`
	TotalStaffUsers  int64            `json:"total_staff_users"`

	NewMessagesWeek  int64 `json:"new_messages_week"`
	NewRequestsWeek  int64 `json:"new_requests_week"`
	NewNewsWeek      int64 `json:"new_news_week"`
	NewMessagesMonth int64 `json:"new_messages_month"`
	NewRequestsMonth int64 `json:"new_requests_month"`
	NewNewsMonth     int64 `json:"new_news_month"`
}

// SeriesPoint is one bucket of a time series
type SeriesPoint struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Series is a zero-filled time series, oldest bucket first
type Series struct {
	Metric      string        `json:"metric"`
	Granularity string        `json:"granularity"`
	Points      []SeriesPoint `json:"points"`
}

// ActivityItem is one entry of the recent activity feed
type ActivityItem struct {
	Type      string    `json:"type"` // "message" or "request"
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceBreakdown holds live request counts for one service
type ServiceBreakdown struct {
	Service models.Service       `json:"service"`
	Counts  ServiceRequestCounts `json:"counts"`
}

// NewsCategoryCount is the number of news items in one category
type NewsCategoryCount struct {
	Category models.NewsCategory `json:"category"`
	Count    int64               `json:"count"`
}

// ServiceCategoryCount is the number of services in one category
type ServiceCategoryCount struct {
	Category models.ServiceCategory `json:"category"`
	Count    int64                  `json:"count"`
}

func metricModel(metric string) (interface{}, error) {
	switch metric {
	case MetricMessages:
		return &models.ContactMessage{}, nil
	case MetricRequests:
		return &models.ServiceRequest{}, nil
	case MetricNews:
		return &models.News{}, nil
	}
	return nil, ErrUnknownMetric
}

type countQuery struct {
	dest  *int64
	model interface{}
	where string
	args  []interface{}
}

// GetDashboardStats computes the dashboard counts as of now
func GetDashboardStats(db *gorm.DB, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	queries := []countQuery{
		{&stats.TotalServices, &models.Service{}, "", nil},
		{&stats.ActiveServices, &models.Service{}, "is_active = ?", []interface{}{true}},
		{&stats.TotalNews, &models.News{}, "", nil},
		{&stats.PublishedNews, &models.News{}, "is_published = ?", []interface{}{true}},
		{&stats.FeaturedNews, &models.News{}, "is_featured = ?", []interface{}{true}},
		{&stats.TotalMessages, &models.ContactMessage{}, "", nil},
		{&stats.UnreadMessages, &models.ContactMessage{}, "is_read = ?", []interface{}{false}},
		{&stats.TotalRequests, &models.ServiceRequest{}, "", nil},
		{&stats.PendingRequests, &models.ServiceRequest{}, "status = ?", []interface{}{models.RequestStatusPending}},
		{&stats.TotalTeamMembers, &models.TeamMember{}, "", nil},
		{&stats.TotalStaffUsers, &models.User{}, "is_staff = ? OR is_superuser = ?", []interface{}{true, true}},
		{&stats.NewMessagesWeek, &models.ContactMessage{}, "created_at >= ?", []interface{}{weekAgo}},
		{&stats.NewRequestsWeek, &models.ServiceRequest{}, "created_at >= ?", []interface{}{weekAgo}},
		{&stats.NewNewsWeek, &models.News{}, "created_at >= ?", []interface{}{weekAgo}},
		{&stats.NewMessagesMonth, &models.ContactMessage{}, "created_at >= ?", []interface{}{monthAgo}},
		{&stats.NewRequestsMonth, &models.ServiceRequest{}, "created_at >= ?", []interface{}{monthAgo}},
		{&stats.NewNewsMonth, &models.News{}, "created_at >= ?", []interface{}{monthAgo}},
	}

	for _, q := range queries {
		query := db.Model(q.model)
		if q.where != "" {
			query = query.Where(q.where, q.args...)
		}
		if err := query.Count(q.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count dashboard stats: %w", err)
		}
	}

	byStatus, err := CountRequestsByStatus(db)
	if err != nil {
		return nil, err
	}
	stats.RequestsByStatus = byStatus
	return stats, nil
}

// createdSince returns the creation times of metric rows at or after since
func createdSince(db *gorm.DB, metric string, since time.Time) ([]time.Time, error) {
	model, err := metricModel(metric)
	if err != nil {
		return nil, err
	}
	var times []time.Time
	err = db.Model(model).Where("created_at >= ?", since).Pluck("created_at", &times).Error
	return times, err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// GetDailySeries counts metric rows per day over the trailing days, ending with today
func GetDailySeries(db *gorm.DB, metric string, days int, now time.Time) (*Series, error) {
	if days <= 0 {
		days = 7
	}
	start := startOfDay(now).AddDate(0, 0, -(days - 1))

	times, err := createdSince(db, metric, start)
	if err != nil {
		return nil, err
	}

	series := &Series{Metric: metric, Granularity: GranularityDay, Points: make([]SeriesPoint, days)}
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		label := start.AddDate(0, 0, i).Format(dayLabelLayout)
		series.Points[i] = SeriesPoint{Label: label}
		index[label] = i
	}
	for _, t := range times {
		if i, ok := index[t.In(now.Location()).Format(dayLabelLayout)]; ok {
			series.Points[i].Count++
		}
	}
	return series, nil
}

// GetMonthlySeries counts metric rows per calendar month over the trailing months, ending with this month
func GetMonthlySeries(db *gorm.DB, metric string, months int, now time.Time) (*Series, error) {
	if months <= 0 {
		months = 12
	}
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	times, err := createdSince(db, metric, start)
	if err != nil {
		return nil, err
	}

	series := &Series{Metric: metric, Granularity: GranularityMonth, Points: make([]SeriesPoint, months)}
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		label := start.AddDate(0, i, 0).Format(monthLabelLayout)
		series.Points[i] = SeriesPoint{Label: label}
		index[label] = i
	}
	for _, t := range times {
		if i, ok := index[t.In(now.Location()).Format(monthLabelLayout)]; ok {
			series.Points[i].Count++
		}
	}
	return series, nil
}

// GetRecentActivity merges the newest messages and requests, newest first, truncated to limit.
// Request titles are the service title in locale.
func GetRecentActivity(db *gorm.DB, limit int, locale string) ([]ActivityItem, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	half := (limit + 1) / 2

	var messages []models.ContactMessage
	if err := db.Order("created_at DESC").Limit(half).Find(&messages).Error; err != nil {
		return nil, err
	}
	var requests []models.ServiceRequest
	if err := db.Preload("Service").Order("created_at DESC").Limit(half).Find(&requests).Error; err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(messages)+len(requests))
	for _, m := range messages {
		status := "unread"
		if m.IsReplied {
			status = "replied"
		} else if m.IsRead {
			status = "read"
		}
		items = append(items, ActivityItem{Type: "message", ID: m.ID, Title: m.Subject, Name: m.Name, Status: status, CreatedAt: m.CreatedAt})
	}
	for _, r := range requests {
		title := ""
		if r.Service != nil {
			title = r.Service.Title(locale)
		}
		items = append(items, ActivityItem{Type: "request", ID: r.ID, Title: title, Name: r.Name, Status: r.Status, CreatedAt: r.CreatedAt})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// GetServiceRequestBreakdown returns live request counts for every service, busiest first
func GetServiceRequestBreakdown(db *gorm.DB) ([]ServiceBreakdown, error) {
	var rows []struct {
		ServiceID string
		Total     int64
		Pending   int64
		Completed int64
	}
	err := db.Model(&models.ServiceRequest{}).
		Select("service_id, COUNT(*) AS total, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS pending, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed",
			models.RequestStatusPending, models.RequestStatusCompleted).
		Group("service_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]ServiceRequestCounts, len(rows))
	for _, row := range rows {
		counts[row.ServiceID] = ServiceRequestCounts{Total: row.Total, Pending: row.Pending, Completed: row.Completed}
	}

	var services []models.Service
	if err := db.Order(serviceOrder()).Find(&services).Error; err != nil {
		return nil, err
	}

	breakdown := make([]ServiceBreakdown, len(services))
	for i, s := range services {
		breakdown[i] = ServiceBreakdown{Service: s, Counts: counts[s.ID]}
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Counts.Total > breakdown[j].Counts.Total
	})
	return breakdown, nil
}

// GetNewsCountByCategory returns how many news items each category holds
func GetNewsCountByCategory(db *gorm.DB) ([]NewsCategoryCount, error) {
	var rows []struct {
		CategoryID string
		Count      int64
	}
	if err := db.Model(&models.News{}).Select("category_id, COUNT(*) AS count").Group("category_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}

	categories, err := ListNewsCategoriesForStaff(db)
	if err != nil {
		return nil, err
	}
	result := make([]NewsCategoryCount, len(categories))
	for i, c := range categories {
		result[i] = NewsCategoryCount{Category: c, Count: counts[c.ID]}
	}
	return result, nil
}

// GetServiceCountByCategory returns how many services each category holds
func GetServiceCountByCategory(db *gorm.DB) ([]ServiceCategoryCount, error) {
	var rows []struct {
		CategoryID string
		Count      int64
	}
	err := db.Model(&models.Service{}).
		Select("category_id, COUNT(*) AS count").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}

	categories, err := ListServiceCategoriesForStaff(db)
	if err != nil {
		return nil, err
	}
	result := make([]ServiceCategoryCount, len(categories))
	for i, c := range categories {
		result[i] = ServiceCategoryCount{Category: c, Count: counts[c.ID]}
	}
	return result, nil
}
