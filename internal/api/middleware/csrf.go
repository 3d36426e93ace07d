package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"sync"
	"time"
)

const (
	csrfTokenLength = 32
	csrfCookieName  = "sonna_csrf_token"
	csrfHeaderName  = "X-CSRF-Token"
	csrfTokenTTL    = 24 * time.Hour

	sessionCookieName = "sonna_session_token"
)

type csrfEntry struct {
	token     string
	expiresAt time.Time
}

// CSRFStore holds one token per session, in memory.
type CSRFStore struct {
	mu      sync.RWMutex
	entries map[string]csrfEntry
}

func NewCSRFStore() *CSRFStore {
	store := &CSRFStore{entries: make(map[string]csrfEntry)}
	go store.cleanupLoop()
	return store
}

func (s *CSRFStore) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for sessionID, entry := range s.entries {
			if now.After(entry.expiresAt) {
				delete(s.entries, sessionID)
			}
		}
		s.mu.Unlock()
	}
}

// GetOrCreate returns the session's current token, minting one if needed.
func (s *CSRFStore) GetOrCreate(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[sessionID]; ok && time.Now().Before(entry.expiresAt) {
		return entry.token
	}

	buf := make([]byte, csrfTokenLength)
	if _, err := rand.Read(buf); err != nil {
		buf = []byte(time.Now().String())
	}
	token := base64.URLEncoding.EncodeToString(buf)

	s.entries[sessionID] = csrfEntry{
		token:     token,
		expiresAt: time.Now().Add(csrfTokenTTL),
	}
	return token
}

// Validate checks the provided token against the session's token.
func (s *CSRFStore) Validate(sessionID, provided string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[sessionID]
	if !ok || time.Now().After(entry.expiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(entry.token), []byte(provided)) == 1
}

// CSRF protects the cookie-authenticated path. Requests carrying their
// session token in a header (Bearer or X-Auth-Token) are skipped: a
// cross-site page cannot set those headers, only ride the cookie.
func CSRF(store *CSRFStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				ensureCSRFCookie(w, r, store)
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Authorization") != "" || r.Header.Get("X-Auth-Token") != "" {
				next.ServeHTTP(w, r)
				return
			}

			sessionID := csrfSessionID(r)
			if sessionID == "" {
				http.Error(w, "Session required", http.StatusForbidden)
				return
			}

			token := r.Header.Get(csrfHeaderName)
			if token == "" {
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}
			if !store.Validate(sessionID, token) {
				http.Error(w, "Invalid CSRF token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, store *CSRFStore) {
	sessionID := csrfSessionID(r)
	if sessionID == "" {
		return
	}
	if _, err := r.Cookie(csrfCookieName); err == nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    store.GetOrCreate(sessionID),
		Path:     "/",
		HttpOnly: false, // the frontend reads it back into X-CSRF-Token
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenTTL.Seconds()),
	})
}

// csrfSessionID keys the store by a prefix of the session cookie, so the
// CSRF token dies with the session without storing the full credential.
func csrfSessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	if len(cookie.Value) > 16 {
		return cookie.Value[:16]
	}
	return cookie.Value
}
