package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sonna/artists-backend/internal/api/dto"
	"github.com/sonna/artists-backend/internal/api/middleware"
	"github.com/sonna/artists-backend/internal/catalog"
)

type TrackHandler struct {
	catalogService *catalog.Service
}

func NewTrackHandler(catalogService *catalog.Service) *TrackHandler {
	return &TrackHandler{catalogService: catalogService}
}

// SubmitTrackRequest carries the full metadata form. ISRC and ISWC are
// never accepted from the client; the server mints them.
type SubmitTrackRequest struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Year        int    `json:"year"`
	Album       string `json:"album,omitempty"`
	TrackNumber int    `json:"track_number,omitempty"`
	Language    string `json:"language,omitempty"`
	Lyrics      string `json:"lyrics,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"` // YYYY-MM-DD
	RecordLabel string `json:"record_label,omitempty"`

	Duration    int    `json:"duration,omitempty"`
	BitRate     int    `json:"bit_rate,omitempty"`
	SampleRate  int    `json:"sample_rate,omitempty"`
	Channels    string `json:"channels,omitempty"`
	FileFormat  string `json:"file_format,omitempty"`
	FileURL     string `json:"file_url,omitempty"`
	CoverArtURL string `json:"cover_art_url,omitempty"`

	Composer        string `json:"composer,omitempty"`
	Lyricist        string `json:"lyricist,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	CopyrightHolder string `json:"copyright_holder,omitempty"`
	PROSociety      string `json:"pro_society,omitempty"`
	LicenseType     string `json:"license_type,omitempty"`
}

func (r SubmitTrackRequest) toInput() (catalog.TrackInput, map[string]string) {
	input := catalog.TrackInput{
		Title:           r.Title,
		Genre:           r.Genre,
		Year:            r.Year,
		Album:           r.Album,
		TrackNumber:     r.TrackNumber,
		Language:        r.Language,
		Lyrics:          r.Lyrics,
		RecordLabel:     r.RecordLabel,
		Duration:        r.Duration,
		BitRate:         r.BitRate,
		SampleRate:      r.SampleRate,
		Channels:        r.Channels,
		FileFormat:      r.FileFormat,
		FileURL:         r.FileURL,
		CoverArtURL:     r.CoverArtURL,
		Composer:        r.Composer,
		Lyricist:        r.Lyricist,
		Publisher:       r.Publisher,
		CopyrightHolder: r.CopyrightHolder,
		PROSociety:      r.PROSociety,
		LicenseType:     r.LicenseType,
	}

	if r.ReleaseDate != "" {
		date, err := time.Parse("2006-01-02", r.ReleaseDate)
		if err != nil {
			return input, map[string]string{"release_date": "Release date must be YYYY-MM-DD"}
		}
		input.ReleaseDate = &date
	}

	return input, nil
}

// Submit handles POST /api/v1/artists/:id/tracks
func (h *TrackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	artistID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req SubmitTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	input, fieldErrors := req.toInput()
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: fieldErrors})
		return
	}

	track, err := h.catalogService.SubmitTrack(r.Context(), userID, artistID, input)
	if err != nil {
		writeCatalogError(w, err, "Failed to submit track")
		return
	}

	writeJSON(w, http.StatusCreated, track)
}

// ListByArtist handles GET /api/v1/artists/:id/tracks
func (h *TrackHandler) ListByArtist(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	artistID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	tracks, err := h.catalogService.ListTracks(r.Context(), userID, artistID)
	if err != nil {
		writeCatalogError(w, err, "Failed to list tracks")
		return
	}

	writeJSON(w, http.StatusOK, tracks)
}

// Get handles GET /api/v1/tracks/:id
func (h *TrackHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	trackID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	track, err := h.catalogService.GetTrack(r.Context(), userID, trackID)
	if err != nil {
		writeCatalogError(w, err, "Failed to get track")
		return
	}

	writeJSON(w, http.StatusOK, track)
}

// Delete handles DELETE /api/v1/tracks/:id
func (h *TrackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	trackID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteTrack(r.Context(), userID, trackID); err != nil {
		writeCatalogError(w, err, "Failed to delete track")
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Track deleted"})
}

// Duplicates handles GET /api/v1/tracks/:id/duplicates
func (h *TrackHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	trackID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	notifications, err := h.catalogService.ListDuplicateNotifications(r.Context(), userID, trackID)
	if err != nil {
		writeCatalogError(w, err, "Failed to list duplicate notifications")
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// Submissions handles GET /api/v1/tracks/:id/submissions
func (h *TrackHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	trackID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	submissions, err := h.catalogService.ListPlatformSubmissions(r.Context(), userID, trackID)
	if err != nil {
		writeCatalogError(w, err, "Failed to list platform submissions")
		return
	}

	writeJSON(w, http.StatusOK, submissions)
}
