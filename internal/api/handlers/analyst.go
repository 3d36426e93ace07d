package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sonna/artists-backend/internal/api/dto"
	"github.com/sonna/artists-backend/internal/database/models"
	"github.com/sonna/artists-backend/internal/review"
)

// AnalystHandler serves the internal review surface. Routes carrying it
// sit behind the X-API-Key middleware, not user sessions.
type AnalystHandler struct {
	reviewService *review.Service
}

func NewAnalystHandler(reviewService *review.Service) *AnalystHandler {
	return &AnalystHandler{reviewService: reviewService}
}

// PendingTracks handles GET /api/v1/analyst/tracks/pending
func (h *AnalystHandler) PendingTracks(w http.ResponseWriter, r *http.Request) {
	params := parsePagination(r)

	tracks, total, err := h.reviewService.ListPending(r.Context(), params.PerPage, params.Offset())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list pending tracks"})
		return
	}

	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       tracks,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages(total, params.PerPage),
	})
}

func parsePagination(r *http.Request) dto.PaginationParams {
	params := dto.PaginationParams{}
	params.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	params.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	params.Normalize()
	return params
}

func totalPages(total int64, perPage int) int {
	return int((total + int64(perPage) - 1) / int64(perPage))
}

type DecisionRequest struct {
	AnalystID string `json:"analyst_id"`
	Status    string `json:"status"`
	Comments  string `json:"comments,omitempty"`
}

func (r DecisionRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.AnalystID == "" {
		errors["analyst_id"] = "Analyst ID is required"
	}
	if r.Status != string(models.TrackStatusApproved) && r.Status != string(models.TrackStatusRejected) {
		errors["status"] = "Status must be approved or rejected"
	}
	return errors
}

// Decide handles POST /api/v1/analyst/tracks/:id/decision
func (h *AnalystHandler) Decide(w http.ResponseWriter, r *http.Request) {
	trackID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	approval, err := h.reviewService.Decide(r.Context(), review.DecisionInput{
		TrackID:   trackID,
		AnalystID: req.AnalystID,
		Status:    models.TrackStatus(req.Status),
		Comments:  req.Comments,
	})
	if err != nil {
		switch {
		case errors.Is(err, review.ErrTrackNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Track not found"})
		case errors.Is(err, review.ErrAlreadyReviewed):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Track already reviewed"})
		case errors.Is(err, review.ErrInvalidDecision):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Status must be approved or rejected"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to record decision"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, approval)
}

type SubmissionUpdateRequest struct {
	Status       string `json:"status"`
	StreamingURL string `json:"streaming_url,omitempty"`
}

func (r SubmissionUpdateRequest) Validate() map[string]string {
	errors := make(map[string]string)
	valid := map[string]bool{
		string(models.SubmissionStatusSubmitted): true,
		string(models.SubmissionStatusLive):      true,
		string(models.SubmissionStatusRejected):  true,
	}
	if !valid[r.Status] {
		errors["status"] = "Status must be submitted, live or rejected"
	}
	return errors
}

// UpdateSubmission handles PUT /api/v1/analyst/submissions/:id
func (h *AnalystHandler) UpdateSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req SubmissionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	submission, err := h.reviewService.UpdateSubmission(r.Context(), submissionID, review.SubmissionUpdateInput{
		Status:       models.SubmissionStatus(req.Status),
		StreamingURL: req.StreamingURL,
	})
	if err != nil {
		if errors.Is(err, review.ErrSubmissionNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Platform submission not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update platform submission"})
		return
	}

	writeJSON(w, http.StatusOK, submission)
}
