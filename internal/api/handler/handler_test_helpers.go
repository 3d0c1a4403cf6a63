package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/crm/internal/api/middleware"
	"github.com/edvin/crm/internal/model"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// withTenant injects a resolved tenant into the request context.
func withTenant(r *http.Request, tenant *model.Tenant) *http.Request {
	return r.WithContext(mw.WithTenant(r.Context(), tenant))
}

// withUser injects authenticated claims into the request context.
func withUser(r *http.Request, userID string) *http.Request {
	claims := &model.JWTClaims{Sub: userID, Email: userID + "@example.com"}
	return r.WithContext(mw.WithClaims(r.Context(), claims))
}

func activeTenant() *model.Tenant {
	return &model.Tenant{
		ID:            "tenant-1",
		Name:          "Acme Corp",
		Subdomain:     "acme",
		Status:        model.StatusActive,
		MaxUsers:      5,
		StorageLimit:  1 << 30,
		APICallsLimit: 10000,
	}
}
