package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/crm/internal/api/middleware"
	"github.com/edvin/crm/internal/api/request"
	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
)

type Tenant struct {
	svc   *core.TenantService
	plans *core.PlanService
}

func NewTenant(svc *core.TenantService, plans *core.PlanService) *Tenant {
	return &Tenant{svc: svc, plans: plans}
}

// Current returns the tenant the request host resolved to.
func (h *Tenant) Current(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, mw.GetTenant(r.Context()))
}

// UpdateSettings godoc
//
//	@Summary		Replace the tenant's settings document
//	@Tags			Tenant
//	@Security		BearerAuth
//	@Param			body body request.UpdateTenantSettings true "Settings"
//	@Success		204
//	@Failure		400 {object} map[string]string
//	@Router			/tenant/settings [put]
func (h *Tenant) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	var req request.UpdateTenantSettings
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateSettings(r.Context(), tenant.ID, req.Settings); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateCustomDomain godoc
//
//	@Summary		Set or clear the tenant's custom domain
//	@Tags			Tenant
//	@Security		BearerAuth
//	@Param			body body request.UpdateCustomDomain true "Custom domain"
//	@Success		204
//	@Failure		409 {object} map[string]string
//	@Router			/tenant/custom-domain [put]
func (h *Tenant) UpdateCustomDomain(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	var req request.UpdateCustomDomain
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateCustomDomain(r.Context(), tenant.ID, req.CustomDomain); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangePlan subscribes the tenant to a plan and applies its limits.
func (h *Tenant) ChangePlan(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	var req request.ChangePlan
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.plans.ApplyPlan(r.Context(), tenant.ID, req.PlanID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, sub)
}

// ---------- Platform operator endpoints ----------

// List godoc
//
//	@Summary		List tenants across the platform
//	@Tags			Ops
//	@Security		ApiKeyAuth
//	@Param			search query string false "Search query"
//	@Param			status query string false "Filter by status"
//	@Param			limit query int false "Page size" default(50)
//	@Param			cursor query string false "Pagination cursor"
//	@Success		200 {object} response.PaginatedResponse{items=[]model.Tenant}
//	@Router			/ops/tenants [get]
func (h *Tenant) List(w http.ResponseWriter, r *http.Request) {
	params := request.ParseListParams(r, "created_at")

	tenants, hasMore, err := h.svc.List(r.Context(), params)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(tenants) > 0 {
		nextCursor = tenants[len(tenants)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, tenants, nextCursor, hasMore)
}

// Get returns any tenant by ID. Operator surface only.
func (h *Tenant) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, tenant)
}

// UpdateStatus applies billing or moderation driven status transitions.
func (h *Tenant) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateTenantStatus
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a tenant and all of its data.
func (h *Tenant) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
