package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sonna/artists-backend/internal/auth"
	"github.com/sonna/artists-backend/internal/database/models"
)

type contextKey string

const (
	UserIDKey       contextKey = "user_id"
	SessionTokenKey contextKey = "session_token"
	UserKey         contextKey = "user"
)

// Auth resolves the opaque session token on every request, so a revoked
// session stops working immediately. Token sources, in order: Bearer
// header (API clients), cookie (web dashboard), X-Auth-Token (AJAX
// fallback).
func Auth(authService auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			session, err := authService.Resolve(r.Context(), token)
			if err != nil {
				// Expired and unknown tokens alike: the client clears
				// its stored token and falls back to unauthenticated.
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, session.UserID)
			ctx = context.WithValue(ctx, SessionTokenKey, token)
			ctx = context.WithValue(ctx, UserKey, session.User)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return r.Header.Get("X-Auth-Token")
}

// Helper functions to extract values from context
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetSessionToken(ctx context.Context) string {
	if token, ok := ctx.Value(SessionTokenKey).(string); ok {
		return token
	}
	return ""
}

func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserKey).(*models.User); ok {
		return user
	}
	return nil
}
