package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sonna/artists-backend/internal/api/dto"
	"github.com/sonna/artists-backend/internal/api/middleware"
	"github.com/sonna/artists-backend/internal/catalog"
	"github.com/sonna/artists-backend/internal/database/models"
)

type ArtistHandler struct {
	catalogService *catalog.Service
}

func NewArtistHandler(catalogService *catalog.Service) *ArtistHandler {
	return &ArtistHandler{catalogService: catalogService}
}

// ArtistRequest covers both create and update. On update, empty fields
// are left untouched.
type ArtistRequest struct {
	Name        string `json:"name"`
	Genre       string `json:"genre,omitempty"`
	Bio         string `json:"bio,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	AccountType string `json:"account_type,omitempty"`
}

func (r ArtistRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.AccountType != "" &&
		r.AccountType != string(models.AccountTypeArtist) &&
		r.AccountType != string(models.AccountTypeLabel) {
		errors["account_type"] = "Account type must be artist or label"
	}
	return errors
}

// List handles GET /api/v1/artists
func (h *ArtistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	artists, err := h.catalogService.ListArtists(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list artists"})
		return
	}

	writeJSON(w, http.StatusOK, artists)
}

// Create handles POST /api/v1/artists
func (h *ArtistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ArtistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	artist, err := h.catalogService.CreateArtist(r.Context(), userID, catalog.ArtistInput{
		Name:        req.Name,
		Genre:       req.Genre,
		Bio:         req.Bio,
		ImageURL:    req.ImageURL,
		AccountType: models.AccountType(req.AccountType),
	})
	if err != nil {
		writeCatalogError(w, err, "Failed to create artist")
		return
	}

	writeJSON(w, http.StatusCreated, artist)
}

// Get handles GET /api/v1/artists/:id
func (h *ArtistHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	artistID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	artist, err := h.catalogService.GetArtist(r.Context(), userID, artistID)
	if err != nil {
		writeCatalogError(w, err, "Failed to get artist")
		return
	}

	writeJSON(w, http.StatusOK, artist)
}

// Update handles PUT /api/v1/artists/:id
func (h *ArtistHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	artistID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req ArtistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	artist, err := h.catalogService.UpdateArtist(r.Context(), userID, artistID, catalog.ArtistInput{
		Name:     req.Name,
		Genre:    req.Genre,
		Bio:      req.Bio,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeCatalogError(w, err, "Failed to update artist")
		return
	}

	writeJSON(w, http.StatusOK, artist)
}

// Delete handles DELETE /api/v1/artists/:id
func (h *ArtistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	artistID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteArtist(r.Context(), userID, artistID); err != nil {
		writeCatalogError(w, err, "Failed to delete artist")
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Artist deleted"})
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// writeCatalogError maps catalog service errors onto HTTP statuses.
func writeCatalogError(w http.ResponseWriter, err error, fallback string) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: verr.Fields})
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found"})
	case errors.Is(err, catalog.ErrArtistLimitReached):
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "Artist limit reached for this account type"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: fallback})
	}
}
