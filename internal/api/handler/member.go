package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/crm/internal/api/middleware"
	"github.com/edvin/crm/internal/api/request"
	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
	"github.com/edvin/crm/internal/model"
)

type Member struct {
	svc *core.MembershipService
}

func NewMember(svc *core.MembershipService) *Member {
	return &Member{svc: svc}
}

// List godoc
//
//	@Summary		List the tenant's members
//	@Tags			Members
//	@Security		BearerAuth
//	@Param			limit query int false "Page size" default(50)
//	@Param			cursor query string false "Pagination cursor"
//	@Success		200 {object} response.PaginatedResponse{items=[]model.TenantUser}
//	@Router			/members [get]
func (h *Member) List(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())
	pg := request.ParsePagination(r)

	members, hasMore, err := h.svc.ListByTenant(r.Context(), tenant.ID, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(members) > 0 {
		nextCursor = members[len(members)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, members, nextCursor, hasMore)
}

// UpdateRole changes a member's role. Admins cannot demote themselves, so a
// tenant always keeps at least one admin.
func (h *Member) UpdateRole(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	userID, err := request.RequireID(chi.URLParam(r, "userID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateMemberRole
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if userID == mw.UserID(r.Context()) && model.Role(req.Role) != model.RoleAdmin {
		response.WriteError(w, http.StatusConflict, "cannot change your own admin role")
		return
	}

	if err := h.svc.UpdateRole(r.Context(), tenant.ID, userID, model.Role(req.Role)); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Deactivate disables a member's access without removing the row.
func (h *Member) Deactivate(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	userID, err := request.RequireID(chi.URLParam(r, "userID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if userID == mw.UserID(r.Context()) {
		response.WriteError(w, http.StatusConflict, "cannot deactivate yourself")
		return
	}

	if err := h.svc.Deactivate(r.Context(), tenant.ID, userID); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
