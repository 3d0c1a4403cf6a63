package handler

import (
	"net/http"

	"github.com/edvin/crm/internal/api/request"
	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
)

type Signup struct {
	svc *core.ProvisioningService
}

func NewSignup(svc *core.ProvisioningService) *Signup {
	return &Signup{svc: svc}
}

// Create godoc
//
//	@Summary		Sign up a new tenant with its admin user
//	@Tags			Signup
//	@Param			body body request.Signup true "Signup details"
//	@Success		201 {object} core.ProvisionResult
//	@Failure		400 {object} map[string]string
//	@Failure		409 {object} map[string]string
//	@Router			/signup [post]
func (h *Signup) Create(w http.ResponseWriter, r *http.Request) {
	var req request.Signup
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Provision(r.Context(), core.ProvisionParams{
		TenantName:    req.TenantName,
		Subdomain:     req.Subdomain,
		BillingEmail:  req.BillingEmail,
		AdminEmail:    req.AdminEmail,
		AdminName:     req.AdminName,
		AdminPassword: req.AdminPassword,
		PlanID:        req.PlanID,
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, result)
}
