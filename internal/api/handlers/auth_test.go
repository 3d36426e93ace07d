package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sonna/artists-backend/internal/api/dto"
	"github.com/sonna/artists-backend/internal/api/handlers"
	"github.com/sonna/artists-backend/internal/api/middleware"
	"github.com/sonna/artists-backend/internal/auth"
	"github.com/sonna/artists-backend/internal/database/models"
	"github.com/sonna/artists-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupAuthTestRouter(t *testing.T) (*chi.Mux, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	authService := auth.NewService(db, nil, 7*24*time.Hour, discardLogger())
	handler := handlers.NewAuthHandler(authService, 0)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", handler.Register)
	r.Post("/api/v1/auth/login", handler.Login)
	r.Post("/api/v1/auth/verification/send", handler.SendVerification)
	r.Post("/api/v1/auth/verification/confirm", handler.ConfirmVerification)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authService))
		r.Post("/api/v1/auth/logout", handler.Logout)
		r.Get("/api/v1/auth/me", handler.Me)
	})

	return r, db
}

func TestAuthHandler_Register(t *testing.T) {
	router, _ := setupAuthTestRouter(t)

	t.Run("successful email registration", func(t *testing.T) {
		body := map[string]string{
			"email":    "newuser@example.com",
			"password": "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "newuser@example.com", resp.User.Email)

		// The session token lands in a cookie too
		cookies := rr.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "sonna_session_token", cookies[0].Name)
		assert.Equal(t, resp.Token, cookies[0].Value)
	})

	t.Run("phone registration", func(t *testing.T) {
		body := map[string]string{
			"phone":    "+351912345678",
			"password": "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
	})

	t.Run("duplicate identifier", func(t *testing.T) {
		body := map[string]string{
			"email":    "dup@example.com",
			"password": "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		req = testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("both email and phone rejected", func(t *testing.T) {
		body := map[string]string{
			"email":    "both@example.com",
			"phone":    "+351911111111",
			"password": "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("password too short", func(t *testing.T) {
		body := map[string]string{
			"email":    "shortpw@example.com",
			"password": "short",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "password")
	})
}

func TestAuthHandler_LoginLogout(t *testing.T) {
	router, _ := setupAuthTestRouter(t)

	register := map[string]string{
		"email":    "cycle@example.com",
		"password": "securepassword123",
	}
	req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", register)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	t.Run("login with email identifier", func(t *testing.T) {
		body := map[string]string{
			"identifier": "cycle@example.com",
			"password":   "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{
			"identifier": "cycle@example.com",
			"password":   "wrongpassword",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		body := map[string]string{
			"identifier": "cycle@example.com",
			"password":   "securepassword123",
		}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)

		// Me works while the session lives
		req = testutil.AuthenticatedRequest(t, "GET", "/api/v1/auth/me", nil, resp.Token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		req = testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/logout", nil, resp.Token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		// And stops working the moment it is revoked
		req = testutil.AuthenticatedRequest(t, "GET", "/api/v1/auth/me", nil, resp.Token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestAuthHandler_Verification(t *testing.T) {
	router, db := setupAuthTestRouter(t)

	register := map[string]string{
		"email":    "verify@example.com",
		"password": "securepassword123",
	}
	req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", register)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	t.Run("send and confirm", func(t *testing.T) {
		body := map[string]string{"target": "verify@example.com", "type": "email"}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/verification/send", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var record models.VerificationCode
		require.NoError(t, db.Where("target = ?", "verify@example.com").
			Order("created_at DESC").First(&record).Error)

		confirm := map[string]string{
			"target": "verify@example.com",
			"code":   record.Code,
			"type":   "email",
		}
		req = testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/verification/confirm", confirm)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var user models.User
		require.NoError(t, db.Where("email = ?", "verify@example.com").First(&user).Error)
		assert.True(t, user.EmailVerified)
	})

	t.Run("bad code", func(t *testing.T) {
		confirm := map[string]string{
			"target": "verify@example.com",
			"code":   "999999",
			"type":   "email",
		}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/verification/confirm", confirm)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
	})

	t.Run("bad type", func(t *testing.T) {
		body := map[string]string{"target": "verify@example.com", "type": "carrier-pigeon"}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/verification/send", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
