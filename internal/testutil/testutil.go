package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sonna/artists-backend/internal/auth"
	"github.com/sonna/artists-backend/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.VerificationCode{},
		&models.Artist{},
		&models.Track{},
		&models.Approval{},
		&models.DuplicateNotification{},
		&models.StreamingPlatform{},
		&models.PlatformSubmission{},
		&models.EmailLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CreateTestUser creates a user with a known password ("testpassword123")
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	email := "test-" + uuid.New().String()[:8] + "@example.com"
	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        &email,
		PasswordHash: hash,
		CountryCode:  "PT",
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestSession issues a stored session token for the user
func CreateTestSession(t *testing.T, db *gorm.DB, user *models.User) *models.Session {
	t.Helper()

	session := &models.Session{
		Base:      models.Base{ID: uuid.New()},
		UserID:    user.ID,
		Token:     "test-token-" + uuid.New().String(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}

	session.User = user
	return session
}

// CreateTestArtist creates an artist owned by the user
func CreateTestArtist(t *testing.T, db *gorm.DB, userID uuid.UUID, accountType models.AccountType) *models.Artist {
	t.Helper()

	artist := &models.Artist{
		Base:        models.Base{ID: uuid.New()},
		UserID:      userID,
		Name:        "Test Artist " + uuid.New().String()[:8],
		Genre:       "fado",
		AccountType: accountType,
	}

	if err := db.Create(artist).Error; err != nil {
		t.Fatalf("failed to create test artist: %v", err)
	}

	return artist
}

// CreateTestTrack creates a pending track for the artist
func CreateTestTrack(t *testing.T, db *gorm.DB, artistID uuid.UUID) *models.Track {
	t.Helper()

	suffix := uuid.New().String()[:8]
	track := &models.Track{
		Base:     models.Base{ID: uuid.New()},
		ArtistID: artistID,
		Title:    "Test Track " + suffix,
		Genre:    "fado",
		Year:     2025,
		ISRCCode: "BR-SNA-25-" + suffix[:5],
		ISWCCode: "T-" + suffix + "0-1",
		Status:   models.TrackStatusPending,
	}

	if err := db.Create(track).Error; err != nil {
		t.Fatalf("failed to create test track: %v", err)
	}

	return track
}

// CreateTestPlatform creates an active streaming platform
func CreateTestPlatform(t *testing.T, db *gorm.DB, name string) *models.StreamingPlatform {
	t.Helper()

	platform := &models.StreamingPlatform{
		Base:     models.Base{ID: uuid.New()},
		Name:     name,
		IsActive: true,
	}

	if err := db.Create(platform).Error; err != nil {
		t.Fatalf("failed to create test platform: %v", err)
	}

	return platform
}

// AuthenticatedRequest creates an HTTP request carrying a session token
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds the common test dependencies
type TestSetup struct {
	DB      *gorm.DB
	User    *models.User
	Session *models.Session
	Token   string
}

// NewTestContext creates a complete test setup with DB, user and session
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	user := CreateTestUser(t, db)
	session := CreateTestSession(t, db, user)

	return &TestSetup{
		DB:      db,
		User:    user,
		Session: session,
		Token:   session.Token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
