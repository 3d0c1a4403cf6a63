package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/crm/internal/api/request"
	"github.com/edvin/crm/internal/model"
)

const tenantColumns = `id, name, subdomain, custom_domain, billing_email, status, plan_id, admin_user_id,
	 max_users, storage_limit, api_calls_limit, settings, trial_ends_at, created_at, updated_at`

// reservedLabels are host labels that never resolve to a tenant.
var reservedLabels = map[string]bool{
	"www": true,
	"api": true,
	"app": true,
}

type TenantService struct {
	db DB
}

func NewTenantService(db DB) *TenantService {
	return &TenantService{db: db}
}

func scanTenant(row pgx.Row) (*model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Subdomain, &t.CustomDomain, &t.BillingEmail, &t.Status,
		&t.PlanID, &t.AdminUserID, &t.MaxUsers, &t.StorageLimit, &t.APICallsLimit,
		&t.Settings, &t.TrialEndsAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TenantService) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1 AND status != $2`, id, model.StatusDeleted))
	if err == pgx.ErrNoRows {
		return nil, NotFound("tenant not found")
	}
	if err != nil {
		return nil, Internal("get tenant", err)
	}
	return t, nil
}

func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE subdomain = $1 AND status != $2`,
		subdomain, model.StatusDeleted))
	if err == pgx.ErrNoRows {
		return nil, NotFound("tenant not found")
	}
	if err != nil {
		return nil, Internal("get tenant by subdomain", err)
	}
	return t, nil
}

func (s *TenantService) GetByCustomDomain(ctx context.Context, domain string) (*model.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE custom_domain = $1 AND status != $2`,
		domain, model.StatusDeleted))
	if err == pgx.ErrNoRows {
		return nil, NotFound("tenant not found")
	}
	if err != nil {
		return nil, Internal("get tenant by custom domain", err)
	}
	return t, nil
}

// ResolveHost maps a request host to its owning tenant. The leftmost label
// is tried as a subdomain first, then the full host as a custom domain.
// Reserved labels (www, api, app) skip subdomain resolution.
func (s *TenantService) ResolveHost(ctx context.Context, host string) (*model.Tenant, error) {
	// Strip port.
	if i := strings.LastIndex(host, ":"); i != -1 {
		host = host[:i]
	}
	if host == "" {
		return nil, NotFound("unable to determine hostname")
	}

	if label, _, ok := strings.Cut(host, "."); ok && !reservedLabels[label] {
		t, err := s.GetBySubdomain(ctx, label)
		if err == nil {
			return t, nil
		}
		if KindOf(err) != KindNotFound {
			return nil, err
		}
	}

	return s.GetByCustomDomain(ctx, host)
}

// CheckAccess gates a resolved tenant on its account status. Suspended
// tenants are denied, expired tenants require payment; trial and active pass.
func CheckAccess(t *model.Tenant) error {
	switch t.Status {
	case model.StatusSuspended:
		return Forbidden("tenant account is suspended")
	case model.StatusExpired:
		return PaymentRequired("tenant subscription has expired")
	}
	return nil
}

func (s *TenantService) List(ctx context.Context, params request.ListParams) ([]model.Tenant, bool, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE status != 'deleted'`
	args := []any{}
	argIdx := 1

	if params.Search != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR subdomain ILIKE $%d)`, argIdx, argIdx)
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if params.Cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, params.Cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, params.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, Internal("list tenants", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Subdomain, &t.CustomDomain, &t.BillingEmail, &t.Status,
			&t.PlanID, &t.AdminUserID, &t.MaxUsers, &t.StorageLimit, &t.APICallsLimit,
			&t.Settings, &t.TrialEndsAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, false, Internal("scan tenant", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, Internal("iterate tenants", err)
	}

	hasMore := len(tenants) > params.Limit
	if hasMore {
		tenants = tenants[:params.Limit]
	}
	return tenants, hasMore, nil
}

// ActiveIDs returns the IDs of all tenants that still consume resources.
// Used by background jobs that iterate the whole fleet.
func (s *TenantService) ActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id FROM tenants WHERE status != 'deleted' ORDER BY id`)
	if err != nil {
		return nil, Internal("list tenant ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, Internal("scan tenant id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, Internal("iterate tenant ids", err)
	}
	return ids, nil
}

// UpdateStatus applies an externally driven status transition (billing
// events, admin suspension).
func (s *TenantService) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants SET status = $1, updated_at = now() WHERE id = $2 AND status != $3`,
		status, id, model.StatusDeleted)
	if err != nil {
		return Internal(fmt.Sprintf("update tenant %s status", id), err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("tenant not found")
	}
	return nil
}

func (s *TenantService) UpdateSettings(ctx context.Context, id string, settings []byte) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants SET settings = $1, updated_at = now() WHERE id = $2 AND status != $3`,
		settings, id, model.StatusDeleted)
	if err != nil {
		return Internal(fmt.Sprintf("update tenant %s settings", id), err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("tenant not found")
	}
	return nil
}

func (s *TenantService) UpdateCustomDomain(ctx context.Context, id string, domain *string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants SET custom_domain = $1, updated_at = now() WHERE id = $2 AND status != $3`,
		domain, id, model.StatusDeleted)
	if err != nil {
		if isUniqueViolation(err, "") {
			return Conflict("custom domain is already in use")
		}
		return Internal(fmt.Sprintf("update tenant %s custom domain", id), err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("tenant not found")
	}
	return nil
}

// Delete removes a tenant and, via foreign-key cascades, its memberships,
// invitations, usage rows, and subscriptions. Explicit admin action only.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return Internal(fmt.Sprintf("delete tenant %s", id), err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("tenant not found")
	}
	return nil
}
