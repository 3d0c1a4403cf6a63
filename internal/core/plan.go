package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/crm/internal/model"
	"github.com/edvin/crm/internal/platform"
)

const planColumns = `id, name, price_cents, billing_cycle, max_users, storage_limit, api_calls_limit, created_at`

type PlanService struct {
	db DB
}

func NewPlanService(db DB) *PlanService {
	return &PlanService{db: db}
}

func (s *PlanService) List(ctx context.Context) ([]model.SubscriptionPlan, error) {
	rows, err := s.db.Query(ctx, `SELECT `+planColumns+` FROM subscription_plans ORDER BY price_cents`)
	if err != nil {
		return nil, Internal("list plans", err)
	}
	defer rows.Close()

	var plans []model.SubscriptionPlan
	for rows.Next() {
		var p model.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.BillingCycle,
			&p.MaxUsers, &p.StorageLimit, &p.APICallsLimit, &p.CreatedAt); err != nil {
			return nil, Internal("scan plan", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, Internal("iterate plans", err)
	}
	return plans, nil
}

func (s *PlanService) GetByID(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	var p model.SubscriptionPlan
	err := s.db.QueryRow(ctx,
		`SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.PriceCents, &p.BillingCycle,
		&p.MaxUsers, &p.StorageLimit, &p.APICallsLimit, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, NotFound("plan not found")
	}
	if err != nil {
		return nil, Internal("get plan", err)
	}
	return &p, nil
}

// ActiveByTenant returns the tenant's active subscription, if any.
func (s *PlanService) ActiveByTenant(ctx context.Context, tenantID string) (*model.TenantSubscription, error) {
	var sub model.TenantSubscription
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, plan_id, status, started_at, ends_at, created_at, updated_at
		 FROM tenant_subscriptions WHERE tenant_id = $1 AND status = 'active'
		 ORDER BY started_at DESC LIMIT 1`, tenantID,
	).Scan(&sub.ID, &sub.TenantID, &sub.PlanID, &sub.Status, &sub.StartedAt,
		&sub.EndsAt, &sub.CreatedAt, &sub.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, NotFound("no active subscription")
	}
	if err != nil {
		return nil, Internal("get subscription", err)
	}
	return &sub, nil
}

// ApplyPlan subscribes the tenant to a plan in one transaction: the previous
// subscription is cancelled, a new one starts, and the tenant row takes on
// the plan's limits and moves to active status.
func (s *PlanService) ApplyPlan(ctx context.Context, tenantID, planID string) (*model.TenantSubscription, error) {
	plan, err := s.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, Internal("begin plan change", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	_, err = tx.Exec(ctx,
		`UPDATE tenant_subscriptions SET status = 'cancelled', ends_at = $1, updated_at = now()
		 WHERE tenant_id = $2 AND status = 'active'`, now, tenantID)
	if err != nil {
		return nil, Internal("cancel previous subscription", err)
	}

	sub := &model.TenantSubscription{
		ID:        platform.NewID(),
		TenantID:  tenantID,
		PlanID:    plan.ID,
		Status:    "active",
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO tenant_subscriptions (id, tenant_id, plan_id, status, started_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		sub.ID, sub.TenantID, sub.PlanID, sub.Status, sub.StartedAt, now)
	if err != nil {
		return nil, Internal("create subscription", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE tenants SET plan_id = $1, status = $2, max_users = $3, storage_limit = $4,
		   api_calls_limit = $5, trial_ends_at = NULL, updated_at = now()
		 WHERE id = $6 AND status != $7`,
		plan.ID, model.StatusActive, plan.MaxUsers, plan.StorageLimit, plan.APICallsLimit,
		tenantID, model.StatusDeleted)
	if err != nil {
		return nil, Internal("apply plan limits", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, NotFound("tenant not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, Internal("commit plan change", err)
	}

	return sub, nil
}
