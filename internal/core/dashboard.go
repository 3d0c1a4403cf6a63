package core

import (
	"context"
	"time"

	"github.com/edvin/crm/internal/model"
)

// DashboardStats is the per-tenant overview shown on the landing screen.
type DashboardStats struct {
	ActiveMembers      int                `json:"active_members"`
	PendingInvitations int                `json:"pending_invitations"`
	Usage              *model.TenantUsage `json:"usage"`
	Limits             *model.LimitReport `json:"limits"`
}

type DashboardService struct {
	db    DB
	usage *UsageService
}

func NewDashboardService(db DB, usage *UsageService) *DashboardService {
	return &DashboardService{db: db, usage: usage}
}

func (s *DashboardService) Stats(ctx context.Context, tenant *model.Tenant) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM tenant_users WHERE tenant_id = $1 AND active`, tenant.ID,
	).Scan(&stats.ActiveMembers)
	if err != nil {
		return nil, Internal("count members", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT count(*) FROM tenant_invitations WHERE tenant_id = $1 AND status = $2 AND expires_at > now()`,
		tenant.ID, model.InvitationPending,
	).Scan(&stats.PendingInvitations)
	if err != nil {
		return nil, Internal("count invitations", err)
	}

	usage, err := s.usage.Current(ctx, tenant.ID, model.UsageMonth(time.Now()))
	if err != nil {
		return nil, err
	}
	stats.Usage = usage

	limits, err := s.usage.CheckLimits(ctx, tenant)
	if err != nil {
		return nil, err
	}
	stats.Limits = limits

	return stats, nil
}
