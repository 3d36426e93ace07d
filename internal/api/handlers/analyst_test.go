package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sonna/artists-backend/internal/api/handlers"
	"github.com/sonna/artists-backend/internal/api/middleware"
	"github.com/sonna/artists-backend/internal/database/models"
	"github.com/sonna/artists-backend/internal/review"
	"github.com/sonna/artists-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testAPIKey = "analyst-test-key"

func setupAnalystTestRouter(t *testing.T) (*chi.Mux, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	reviewService := review.NewService(db, nil, discardLogger())
	handler := handlers.NewAnalystHandler(reviewService)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.AnalystKey(testAPIKey))
		r.Get("/api/v1/analyst/tracks/pending", handler.PendingTracks)
		r.Post("/api/v1/analyst/tracks/{id}/decision", handler.Decide)
		r.Put("/api/v1/analyst/submissions/{id}", handler.UpdateSubmission)
	})

	return r, db
}

func analystRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	req := testutil.UnauthenticatedRequest(t, method, path, body)
	req.Header.Set("X-API-Key", testAPIKey)
	return req
}

func seedPendingTrack(t *testing.T, db *gorm.DB) *models.Track {
	t.Helper()
	user := testutil.CreateTestUser(t, db)
	artist := testutil.CreateTestArtist(t, db, user.ID, models.AccountTypeArtist)
	return testutil.CreateTestTrack(t, db, artist.ID)
}

func TestAnalystHandler_KeyGate(t *testing.T) {
	router, _ := setupAnalystTestRouter(t)

	t.Run("missing key", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/analyst/tracks/pending", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("wrong key", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/analyst/tracks/pending", nil)
		req.Header.Set("X-API-Key", "wrong")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

type pendingTracksPage struct {
	Data       []models.Track `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

func TestAnalystHandler_PendingTracks(t *testing.T) {
	router, db := setupAnalystTestRouter(t)

	track := seedPendingTrack(t, db)
	reviewed := seedPendingTrack(t, db)
	db.Model(reviewed).Update("status", models.TrackStatusRejected)

	req := analystRequest(t, "GET", "/api/v1/analyst/tracks/pending", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var page pendingTracksPage
	testutil.ParseJSONResponse(t, rr, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PerPage)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, track.ID, page.Data[0].ID)
	require.NotNil(t, page.Data[0].Artist)
}

func TestAnalystHandler_PendingTracksPagination(t *testing.T) {
	router, db := setupAnalystTestRouter(t)

	for i := 0; i < 3; i++ {
		seedPendingTrack(t, db)
	}

	req := analystRequest(t, "GET", "/api/v1/analyst/tracks/pending?page=2&per_page=2", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var page pendingTracksPage
	testutil.ParseJSONResponse(t, rr, &page)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.PerPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 1)
}

func TestAnalystHandler_Decide(t *testing.T) {
	router, db := setupAnalystTestRouter(t)

	t.Run("approve", func(t *testing.T) {
		track := seedPendingTrack(t, db)

		body := map[string]string{
			"analyst_id": "analyst-1",
			"status":     "approved",
			"comments":   "all rights documented",
		}
		req := analystRequest(t, "POST", "/api/v1/analyst/tracks/"+track.ID.String()+"/decision", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)

		var approval models.Approval
		testutil.ParseJSONResponse(t, rr, &approval)
		assert.Equal(t, models.TrackStatusApproved, approval.Status)

		var fresh models.Track
		require.NoError(t, db.First(&fresh, "id = ?", track.ID).Error)
		assert.Equal(t, models.TrackStatusApproved, fresh.Status)
	})

	t.Run("double decision conflicts", func(t *testing.T) {
		track := seedPendingTrack(t, db)
		body := map[string]string{"analyst_id": "analyst-1", "status": "rejected"}

		req := analystRequest(t, "POST", "/api/v1/analyst/tracks/"+track.ID.String()+"/decision", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		req = analystRequest(t, "POST", "/api/v1/analyst/tracks/"+track.ID.String()+"/decision", body)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("invalid status", func(t *testing.T) {
		track := seedPendingTrack(t, db)
		body := map[string]string{"analyst_id": "analyst-1", "status": "maybe"}

		req := analystRequest(t, "POST", "/api/v1/analyst/tracks/"+track.ID.String()+"/decision", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("missing analyst id", func(t *testing.T) {
		track := seedPendingTrack(t, db)
		body := map[string]string{"status": "approved"}

		req := analystRequest(t, "POST", "/api/v1/analyst/tracks/"+track.ID.String()+"/decision", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown track", func(t *testing.T) {
		body := map[string]string{"analyst_id": "analyst-1", "status": "approved"}
		req := analystRequest(t, "POST", "/api/v1/analyst/tracks/6a0e7a65-3a3a-4a21-bb2f-000000000000/decision", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestAnalystHandler_UpdateSubmission(t *testing.T) {
	router, db := setupAnalystTestRouter(t)

	track := seedPendingTrack(t, db)
	platform := testutil.CreateTestPlatform(t, db, "Spotify")
	submission := &models.PlatformSubmission{
		TrackID:    track.ID,
		PlatformID: platform.ID,
		Status:     models.SubmissionStatusSubmitted,
	}
	require.NoError(t, db.Create(submission).Error)

	t.Run("mark live", func(t *testing.T) {
		body := map[string]string{
			"status":        "live",
			"streaming_url": "https://open.spotify.com/track/abc",
		}
		req := analystRequest(t, "PUT", "/api/v1/analyst/submissions/"+submission.ID.String(), body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		var fresh models.PlatformSubmission
		require.NoError(t, db.First(&fresh, "id = ?", submission.ID).Error)
		assert.Equal(t, models.SubmissionStatusLive, fresh.Status)
		assert.Equal(t, "https://open.spotify.com/track/abc", fresh.StreamingURL)
	})

	t.Run("invalid status", func(t *testing.T) {
		body := map[string]string{"status": "on-hold"}
		req := analystRequest(t, "PUT", "/api/v1/analyst/submissions/"+submission.ID.String(), body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown submission", func(t *testing.T) {
		body := map[string]string{"status": "rejected"}
		req := analystRequest(t, "PUT", "/api/v1/analyst/submissions/6a0e7a65-3a3a-4a21-bb2f-000000000001", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}
