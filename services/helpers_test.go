package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB initializes an isolated in-memory SQLite database with every model migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:mem_%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

var (
	staffActor = &identity.Principal{Subject: "staff-1", Email: "staff@example.org", Name: "Staff Member", IsStaff: true}
	superActor = &identity.Principal{Subject: "admin-1", Email: "admin@example.org", Name: "Admin", IsStaff: true, IsSuperuser: true}
	visitor    = &identity.Principal{Subject: "visitor-1"}

	testAudit = AuditContext{UserID: "staff-1", UserName: "Staff Member", UserEmail: "staff@example.org", IPAddress: "127.0.0.1"}
)

func createService(t *testing.T, db *gorm.DB, title string, active bool) *models.Service {
	t.Helper()
	s := &models.Service{TitleAr: title, DescriptionAr: "وصف " + title, IsActive: active}
	require.NoError(t, db.Create(s).Error)
	if !active {
		require.NoError(t, db.Model(s).Update("is_active", false).Error)
	}
	return s
}

func createRequest(t *testing.T, db *gorm.DB, serviceID, status string, createdAt time.Time) *models.ServiceRequest {
	t.Helper()
	r := &models.ServiceRequest{
		Name:        "Visitor",
		Email:       "visitor@example.org",
		Phone:       "0500000000",
		ServiceID:   serviceID,
		Description: "Please help",
		Status:      status,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func createMessage(t *testing.T, db *gorm.DB, read, replied bool, createdAt time.Time) *models.ContactMessage {
	t.Helper()
	m := &models.ContactMessage{
		Name:      "Visitor",
		Email:     "visitor@example.org",
		Subject:   "Hello",
		Message:   "Question",
		IsRead:    read,
		IsReplied: replied,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// recordingNotifier captures notifications and optionally fails them
type recordingNotifier struct {
	mu       sync.Mutex
	messages []*models.ContactMessage
	requests []*models.ServiceRequest
	fail     bool
}

func (n *recordingNotifier) NotifyContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("mail provider unavailable")
	}
	n.messages = append(n.messages, msg)
	return nil
}

func (n *recordingNotifier) NotifyServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("mail provider unavailable")
	}
	n.requests = append(n.requests, req)
	return nil
}
