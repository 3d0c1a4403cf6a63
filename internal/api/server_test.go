package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/edvin/crm/internal/config"
)

func newTestServer(opsKey string) *Server {
	cfg := &config.Config{
		JWTSecret: "test-secret",
		JWTIssuer: "crm",
		OpsAPIKey: opsKey,
	}
	return NewServer(zerolog.Nop(), nil, cfg)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer("sekret")
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestOpsRoutes_MissingKeyRejected(t *testing.T) {
	srv := newTestServer("sekret")
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/ops/v1/tenants", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOpsRoutes_DisabledWithoutConfiguredKey(t *testing.T) {
	srv := newTestServer("")
	defer srv.Close()

	req := httptest.NewRequest("GET", "/ops/v1/tenants", nil)
	req.Header.Set("X-API-Key", "anything")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpsCreateTenant_RouteWired(t *testing.T) {
	srv := newTestServer("sekret")
	defer srv.Close()

	// An empty body fails request validation, proving the route reaches the
	// provisioning handler without needing a database.
	req := httptest.NewRequest("POST", "/ops/v1/tenants", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "sekret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation error")
}

func TestTenantAPI_RequiresBearerToken(t *testing.T) {
	srv := newTestServer("sekret")
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/invitations", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
