package middleware

import (
	"context"
	"net/http"

	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
	"github.com/edvin/crm/internal/model"
)

const membershipKey contextKey = "membership"

// RequireMember returns a middleware that verifies the authenticated user is
// an active member of the resolved tenant. Runs after Auth and ResolveTenant.
func RequireMember(memberships *core.MembershipService) func(http.Handler) http.Handler {
	return RequireRole(memberships, "")
}

// RequireRole returns a middleware that verifies active membership with at
// least the given role. An empty minRole checks membership only.
func RequireRole(memberships *core.MembershipService, minRole model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant := GetTenant(r.Context())
			userID := UserID(r.Context())
			if tenant == nil || userID == "" {
				response.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			membership, err := memberships.Check(r.Context(), tenant.ID, userID, minRole)
			if err != nil {
				response.WriteServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithMembership(r.Context(), membership)))
		})
	}
}

// WithMembership returns a context carrying a verified membership.
func WithMembership(ctx context.Context, membership *model.TenantUser) context.Context {
	return context.WithValue(ctx, membershipKey, membership)
}

// GetMembership extracts the verified membership from the request context.
func GetMembership(ctx context.Context) *model.TenantUser {
	membership, _ := ctx.Value(membershipKey).(*model.TenantUser)
	return membership
}
