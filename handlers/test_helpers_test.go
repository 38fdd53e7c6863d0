package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "handlers-test-secret-long-enough-for-hs256"

var (
	staffPrincipal = identity.Principal{Subject: "staff-1", Email: "staff@example.org", Name: "Staff Member", IsStaff: true}
	superPrincipal = identity.Principal{Subject: "admin-1", Email: "admin@example.org", Name: "Admin", IsStaff: true, IsSuperuser: true}
	plainPrincipal = identity.Principal{Subject: "visitor-1", Email: "visitor@example.org"}

	clientCounter int64
)

// setupTestDB points db.DB and services.Storage at isolated test instances
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:mem_%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.New().String())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))

	previousDB, previousStorage := db.DB, services.Storage
	db.DB = testDB
	services.Storage = services.NewLocalStorage(t.TempDir())
	t.Cleanup(func() {
		db.DB = previousDB
		services.Storage = previousStorage
		if sqlDB, err := testDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return testDB
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:    "test",
		AppURL:         "http://example.org",
		AllowedOrigins: []string{"*"},
		FallbackLocale: "ar",
	}
}

// nopNotifier accepts every notification
type nopNotifier struct{}

func (nopNotifier) NotifyContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	return nil
}

func (nopNotifier) NotifyServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	return nil
}

// testServer is the full route tree over a fresh database
type testServer struct {
	e        *echo.Echo
	db       *gorm.DB
	clientIP string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	database := setupTestDB(t)
	e := echo.New()
	RegisterRoutes(e, testConfig(), identity.NewHMACVerifier(testSecret), services.NewIntakeService(database, nopNotifier{}))

	// Rate limiters are shared across tests, so every server gets its own client address
	n := atomic.AddInt64(&clientCounter, 1)
	return &testServer{e: e, db: database, clientIP: fmt.Sprintf("10.%d.%d.%d", (n>>16)&255, (n>>8)&255, n&255)}
}

func token(t *testing.T, p identity.Principal) string {
	t.Helper()
	raw, err := identity.IssueToken(testSecret, p, time.Hour)
	require.NoError(t, err)
	return raw
}

// do sends a request through the router; a non-nil body is sent as JSON
func (s *testServer) do(t *testing.T, method, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	req.Header.Set(echo.HeaderXRealIP, s.clientIP)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) asStaff(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, path, body, token(t, staffPrincipal))
}

func (s *testServer) asSuperuser(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, path, body, token(t, superPrincipal))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createService(t *testing.T, database *gorm.DB, title string, active bool) *models.Service {
	t.Helper()
	s := &models.Service{TitleAr: title, TitleEn: title + " (en)", DescriptionAr: "وصف " + title, IsActive: active}
	require.NoError(t, database.Create(s).Error)
	if !active {
		require.NoError(t, database.Model(s).Update("is_active", false).Error)
	}
	return s
}

func createArticle(t *testing.T, database *gorm.DB, title string, published bool) *models.News {
	t.Helper()
	category := &models.NewsCategory{NameAr: "أخبار", IsActive: true}
	require.NoError(t, database.Create(category).Error)
	n := &models.News{TitleAr: title, ContentAr: "محتوى " + title, CategoryID: category.ID, AuthorID: "staff-1", IsPublished: published}
	require.NoError(t, database.Create(n).Error)
	if !published {
		require.NoError(t, database.Model(n).Update("is_published", false).Error)
	}
	return n
}

func createRequest(t *testing.T, database *gorm.DB, serviceID, status string) *models.ServiceRequest {
	t.Helper()
	r := &models.ServiceRequest{
		Name:        "Visitor",
		Email:       "visitor@example.org",
		Phone:       "0500000000",
		ServiceID:   serviceID,
		Description: "Please help",
		Status:      status,
	}
	require.NoError(t, database.Create(r).Error)
	return r
}

func createMessage(t *testing.T, database *gorm.DB, read, replied bool) *models.ContactMessage {
	t.Helper()
	m := &models.ContactMessage{Name: "Visitor", Email: "visitor@example.org", Subject: "Hello", Message: "Question", IsRead: read, IsReplied: replied}
	require.NoError(t, database.Create(m).Error)
	return m
}
