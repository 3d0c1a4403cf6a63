package handler

import (
	"net/http"

	mw "github.com/edvin/crm/internal/api/middleware"
	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
)

type Dashboard struct {
	svc *core.DashboardService
}

func NewDashboard(svc *core.DashboardService) *Dashboard {
	return &Dashboard{svc: svc}
}

// Stats godoc
//
//	@Summary		Get dashboard statistics for the tenant
//	@Tags			Dashboard
//	@Security		BearerAuth
//	@Success		200 {object} core.DashboardStats
//	@Failure		500 {object} map[string]string
//	@Router			/dashboard/stats [get]
func (h *Dashboard) Stats(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	stats, err := h.svc.Stats(r.Context(), tenant)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, stats)
}
