package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edvin/crm/internal/model"
	"github.com/edvin/crm/internal/platform"
)

type ProvisioningService struct {
	db    DB
	plans *PlanService
}

func NewProvisioningService(db DB, plans *PlanService) *ProvisioningService {
	return &ProvisioningService{db: db, plans: plans}
}

// ProvisionParams carries the validated signup input.
type ProvisionParams struct {
	TenantName    string
	Subdomain     string
	BillingEmail  string
	AdminEmail    string
	AdminName     string
	AdminPassword string
	PlanID        string
}

// ProvisionResult is what a successful signup hands back to the caller.
type ProvisionResult struct {
	Tenant *model.Tenant `json:"tenant"`
	Admin  *model.User   `json:"admin"`
}

// Provision creates a tenant together with its admin user, admin membership,
// and first usage row in a single transaction. Any failure rolls everything
// back; a tenant never exists without its admin.
func (s *ProvisioningService) Provision(ctx context.Context, params ProvisionParams) (*ProvisionResult, error) {
	subdomain := strings.ToLower(params.Subdomain)
	if reservedLabels[subdomain] {
		return nil, Conflict(fmt.Sprintf("subdomain %q is reserved", subdomain))
	}

	limits := model.Tenant{
		MaxUsers:      model.DefaultMaxUsers,
		StorageLimit:  model.DefaultStorageLimit,
		APICallsLimit: model.DefaultAPICallsLimit,
	}
	var planID *string
	if params.PlanID != "" {
		plan, err := s.plans.GetByID(ctx, params.PlanID)
		if err != nil {
			return nil, err
		}
		limits.MaxUsers = plan.MaxUsers
		limits.StorageLimit = plan.StorageLimit
		limits.APICallsLimit = plan.APICallsLimit
		planID = &plan.ID
	}

	passwordHash, err := HashPassword(params.AdminPassword)
	if err != nil {
		return nil, Internal("hash password", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, Internal("begin provisioning", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	trialEndsAt := now.Add(model.TrialDuration)

	tenant := &model.Tenant{
		ID:            platform.NewID(),
		Name:          params.TenantName,
		Subdomain:     subdomain,
		BillingEmail:  params.BillingEmail,
		Status:        model.StatusTrial,
		PlanID:        planID,
		MaxUsers:      limits.MaxUsers,
		StorageLimit:  limits.StorageLimit,
		APICallsLimit: limits.APICallsLimit,
		Settings:      []byte(`{}`),
		TrialEndsAt:   &trialEndsAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO tenants (id, name, subdomain, billing_email, status, plan_id,
		   max_users, storage_limit, api_calls_limit, settings, trial_ends_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		tenant.ID, tenant.Name, tenant.Subdomain, tenant.BillingEmail, tenant.Status, tenant.PlanID,
		tenant.MaxUsers, tenant.StorageLimit, tenant.APICallsLimit, tenant.Settings, tenant.TrialEndsAt, now)
	if err != nil {
		if isUniqueViolation(err, "tenants_subdomain_key") {
			return nil, Conflict(fmt.Sprintf("subdomain %q is already taken", subdomain))
		}
		return nil, Internal("create tenant", err)
	}

	admin := &model.User{
		ID:           platform.NewID(),
		Email:        params.AdminEmail,
		PasswordHash: passwordHash,
		DisplayName:  params.AdminName,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, display_name, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, true, $5, $5)`,
		admin.ID, admin.Email, admin.PasswordHash, admin.DisplayName, now)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, Conflict(fmt.Sprintf("email %s is already registered", params.AdminEmail))
		}
		return nil, Internal("create admin user", err)
	}

	if _, err := upsertMembership(ctx, tx, platform.NewID(), tenant.ID, admin.ID, model.RoleAdmin); err != nil {
		return nil, Internal("create admin membership", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE tenants SET admin_user_id = $1 WHERE id = $2`, admin.ID, tenant.ID)
	if err != nil {
		return nil, Internal("set tenant admin", err)
	}
	tenant.AdminUserID = &admin.ID

	if err := incrementUserCount(ctx, tx, tenant.ID, now); err != nil {
		return nil, Internal("seed usage", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, Internal("commit provisioning", err)
	}

	return &ProvisionResult{Tenant: tenant, Admin: admin}, nil
}
