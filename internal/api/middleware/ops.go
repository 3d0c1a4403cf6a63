package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/edvin/crm/internal/api/response"
)

// OpsAuth returns a middleware guarding platform-operator endpoints with a
// static X-API-Key. An empty configured key disables the surface entirely.
func OpsAuth(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				response.WriteError(w, http.StatusNotFound, "not found")
				return
			}
			got := r.Header.Get("X-API-Key")
			if got == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
