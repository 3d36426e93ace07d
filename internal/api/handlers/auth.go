package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sonna/artists-backend/internal/api/dto"
	"github.com/sonna/artists-backend/internal/api/middleware"
	"github.com/sonna/artists-backend/internal/auth"
	"github.com/sonna/artists-backend/internal/database/models"
)

const sessionCookieName = "sonna_session_token"

type AuthHandler struct {
	authService *auth.Service
	cookieTTL   int // seconds
}

func NewAuthHandler(authService *auth.Service, cookieTTLSeconds int) *AuthHandler {
	if cookieTTLSeconds <= 0 {
		cookieTTLSeconds = 7 * 24 * 3600
	}
	return &AuthHandler{authService: authService, cookieTTL: cookieTTLSeconds}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		CountryCode: req.CountryCode,
	})

	if err != nil {
		switch err {
		case auth.ErrDuplicateIdentifier:
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email or phone already registered"})
		case auth.ErrIdentifierRequired:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Exactly one of email or phone is required"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	h.setSessionCookie(w, resp.Token)
	writeJSON(w, http.StatusCreated, dto.AuthResponse{Token: resp.Token, User: userToDTO(resp.User)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		IPAddress:  middleware.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})

	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	h.setSessionCookie(w, resp.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: resp.Token, User: userToDTO(resp.User)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetSessionToken(r.Context())
	if err := h.authService.Logout(r.Context(), token); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Logout failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, userToDTO(user))
}

func (h *AuthHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.VerificationSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	err := h.authService.SendVerificationCode(r.Context(), req.Target, verificationType(req.Type))
	if err != nil {
		switch err {
		case auth.ErrCodeThrottled:
			writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{Error: "A code was sent recently, try again in a minute"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to send verification code"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Verification code sent"})
}

func (h *AuthHandler) ConfirmVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.VerificationConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	err := h.authService.VerifyCode(r.Context(), req.Target, req.Code, verificationType(req.Type))
	if err != nil {
		switch err {
		case auth.ErrCodeInvalid:
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "Verification code invalid or expired"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Verification failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Verified"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   h.cookieTTL,
	})
}

func verificationType(t string) models.VerificationType {
	if t == "phone" {
		return models.VerificationTypePhone
	}
	return models.VerificationTypeEmail
}

func userToDTO(user *models.User) dto.UserDTO {
	u := dto.UserDTO{
		ID:            user.ID.String(),
		CountryCode:   user.CountryCode,
		EmailVerified: user.EmailVerified,
		PhoneVerified: user.PhoneVerified,
	}
	if user.Email != nil {
		u.Email = *user.Email
	}
	if user.Phone != nil {
		u.Phone = *user.Phone
	}
	return u
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

