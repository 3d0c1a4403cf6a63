package handler

import (
	"net/http"

	mw "github.com/edvin/crm/internal/api/middleware"
	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
	"github.com/edvin/crm/internal/model"
)

type Me struct {
	svc *core.UserService
}

func NewMe(svc *core.UserService) *Me {
	return &Me{svc: svc}
}

type meResponse struct {
	User       *model.User       `json:"user"`
	Membership *model.TenantUser `json:"membership,omitempty"`
}

// Get godoc
//
//	@Summary		Get the authenticated user with their membership in the current tenant
//	@Tags			Me
//	@Security		BearerAuth
//	@Success		200 {object} handler.meResponse
//	@Router			/me [get]
func (h *Me) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetByID(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, meResponse{
		User:       user,
		Membership: mw.GetMembership(r.Context()),
	})
}
