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

type Invitation struct {
	svc *core.InvitationService
}

func NewInvitation(svc *core.InvitationService) *Invitation {
	return &Invitation{svc: svc}
}

type invitationResponse struct {
	*model.TenantInvitation
	Token string `json:"token"`
}

// Create godoc
//
//	@Summary		Invite a user to the tenant
//	@Tags			Invitations
//	@Security		BearerAuth
//	@Param			body body request.CreateInvitation true "Invitation"
//	@Success		201 {object} handler.invitationResponse
//	@Failure		402 {object} map[string]string
//	@Failure		409 {object} map[string]string
//	@Router			/invitations [post]
func (h *Invitation) Create(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	var req request.CreateInvitation
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.svc.Invite(r.Context(), tenant, req.Email, model.Role(req.Role), mw.UserID(r.Context()))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	// The token is returned once, to the inviter, and never listed again.
	response.WriteJSON(w, http.StatusCreated, invitationResponse{TenantInvitation: inv, Token: inv.Token})
}

// List returns the tenant's invitations, without tokens.
func (h *Invitation) List(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	invitations, err := h.svc.ListByTenant(r.Context(), tenant.ID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, invitations)
}

// Revoke expires a pending invitation.
func (h *Invitation) Revoke(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Revoke(r.Context(), tenant.ID, id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Redeem godoc
//
//	@Summary		Accept an invitation by token
//	@Tags			Invitations
//	@Param			body body request.RedeemInvitation true "Redemption"
//	@Success		200 {object} model.TenantUser
//	@Failure		404 {object} map[string]string
//	@Failure		409 {object} map[string]string
//	@Router			/invitations/redeem [post]
func (h *Invitation) Redeem(w http.ResponseWriter, r *http.Request) {
	var req request.RedeemInvitation
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tu, err := h.svc.Redeem(r.Context(), core.RedeemParams{
		Token:       req.Token,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, tu)
}
