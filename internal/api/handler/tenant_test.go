package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/edvin/crm/internal/core"
)

func newTenantHandler(db *handlerMockDB) *Tenant {
	return NewTenant(core.NewTenantService(db), core.NewPlanService(db))
}

func TestTenantCurrent_ReturnsResolvedTenant(t *testing.T) {
	h := newTenantHandler(&handlerMockDB{})

	req := withTenant(withUser(newRequest("GET", "/api/v1/tenant", nil), "user-1"), activeTenant())
	rec := httptest.NewRecorder()
	h.Current(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subdomain":"acme"`)
}

func TestTenantUpdateSettings_Success(t *testing.T) {
	db := &handlerMockDB{}
	h := newTenantHandler(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	req := newRequest("PUT", "/api/v1/tenant/settings", map[string]any{
		"settings": map[string]string{"theme": "dark"},
	})
	req = withTenant(withUser(req, "user-1"), activeTenant())

	rec := httptest.NewRecorder()
	h.UpdateSettings(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTenantUpdateCustomDomain_Conflict(t *testing.T) {
	db := &handlerMockDB{}
	h := newTenantHandler(db)

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "tenants_custom_domain_key"}
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, pgErr)

	req := newRequest("PUT", "/api/v1/tenant/custom-domain", map[string]string{
		"custom_domain": "crm.taken.example",
	})
	req = withTenant(withUser(req, "user-1"), activeTenant())

	rec := httptest.NewRecorder()
	h.UpdateCustomDomain(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "already in use")
}

func TestTenantUpdateStatus_InvalidStatus(t *testing.T) {
	db := &handlerMockDB{}
	h := newTenantHandler(db)

	req := newRequest("PUT", "/ops/v1/tenants/tenant-1/status", map[string]string{"status": "frozen"})
	req = withChiURLParam(req, "id", "tenant-1")

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	db.AssertNotCalled(t, "Exec")
}

func TestTenantUpdateStatus_Success(t *testing.T) {
	db := &handlerMockDB{}
	h := newTenantHandler(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(args []any) bool {
		return args[0] == "suspended" && args[1] == "tenant-1"
	})).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	req := newRequest("PUT", "/ops/v1/tenants/tenant-1/status", map[string]string{"status": "suspended"})
	req = withChiURLParam(req, "id", "tenant-1")

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	db.AssertExpectations(t)
}

func TestTenantDelete_NotFound(t *testing.T) {
	db := &handlerMockDB{}
	h := newTenantHandler(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("DELETE 0"), nil)

	req := withChiURLParam(newRequest("DELETE", "/ops/v1/tenants/ghost", nil), "id", "ghost")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
