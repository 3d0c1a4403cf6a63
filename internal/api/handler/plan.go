package handler

import (
	"net/http"

	mw "github.com/edvin/crm/internal/api/middleware"
	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
)

type Plan struct {
	svc *core.PlanService
}

func NewPlan(svc *core.PlanService) *Plan {
	return &Plan{svc: svc}
}

// List returns the public plan catalog.
func (h *Plan) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.List(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, plans)
}

// Subscription returns the tenant's active subscription.
func (h *Plan) Subscription(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	sub, err := h.svc.ActiveByTenant(r.Context(), tenant.ID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, sub)
}
