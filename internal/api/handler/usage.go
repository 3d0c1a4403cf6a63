package handler

import (
	"net/http"
	"strconv"
	"time"

	mw "github.com/edvin/crm/internal/api/middleware"
	"github.com/edvin/crm/internal/api/response"
	"github.com/edvin/crm/internal/core"
	"github.com/edvin/crm/internal/model"
)

type Usage struct {
	svc *core.UsageService
}

func NewUsage(svc *core.UsageService) *Usage {
	return &Usage{svc: svc}
}

// Current godoc
//
//	@Summary		Get the tenant's current-month usage
//	@Tags			Usage
//	@Security		BearerAuth
//	@Success		200 {object} model.TenantUsage
//	@Router			/usage [get]
func (h *Usage) Current(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	usage, err := h.svc.Current(r.Context(), tenant.ID, model.UsageMonth(time.Now()))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, usage)
}

// History returns recent monthly usage rows, newest first. The months query
// parameter defaults to 12.
func (h *Usage) History(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	months := 12
	if s := r.URL.Query().Get("months"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 60 {
			months = n
		}
	}

	usage, err := h.svc.History(r.Context(), tenant.ID, months)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, usage)
}

// Limits godoc
//
//	@Summary		Get the tenant's usage measured against its plan limits
//	@Tags			Usage
//	@Security		BearerAuth
//	@Success		200 {object} model.LimitReport
//	@Router			/usage/limits [get]
func (h *Usage) Limits(w http.ResponseWriter, r *http.Request) {
	tenant := mw.GetTenant(r.Context())

	report, err := h.svc.CheckLimits(r.Context(), tenant)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, report)
}
