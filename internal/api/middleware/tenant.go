package middleware

import (
	"context"
	"net/http"

	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
	"github.com/edvin/crm/internal/model"
)

const tenantKey contextKey = "tenant"

// ResolveTenant returns a middleware that maps the request host to a tenant
// and gates on its account status. Suspended tenants get 403, expired 402.
func ResolveTenant(tenants *core.TenantService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant, err := tenants.ResolveHost(r.Context(), r.Host)
			if err != nil {
				response.WriteServiceError(w, err)
				return
			}

			if err := core.CheckAccess(tenant); err != nil {
				response.WriteServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenant)))
		})
	}
}

// WithTenant returns a context carrying the resolved tenant.
func WithTenant(ctx context.Context, tenant *model.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, tenant)
}

// GetTenant extracts the resolved tenant from the request context.
func GetTenant(ctx context.Context) *model.Tenant {
	tenant, _ := ctx.Value(tenantKey).(*model.Tenant)
	return tenant
}
