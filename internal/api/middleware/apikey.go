package middleware

import (
	"crypto/subtle"
	"net/http"
)

// AnalystKey gates the staff endpoints behind a static X-API-Key header.
// An empty configured key disables the surface entirely.
func AnalystKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("X-API-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
