package middleware

import (
	"net/http"

	"github.com/edvin/crm/internal/core"
)

// TrackUsage returns a middleware that counts each tenant-scoped request
// against the tenant's monthly API call usage. Tracking is asynchronous and
// never fails the request.
func TrackUsage(usage *core.UsageService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tenant := GetTenant(r.Context()); tenant != nil {
				usage.TrackAPICall(tenant.ID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
