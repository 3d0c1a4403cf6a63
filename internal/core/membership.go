package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/crm/internal/model"
)

const tenantUserColumns = `id, tenant_id, user_id, role, permissions, active, created_at, updated_at`

type MembershipService struct {
	db DB
}

func NewMembershipService(db DB) *MembershipService {
	return &MembershipService{db: db}
}

func scanTenantUser(row pgx.Row) (*model.TenantUser, error) {
	var tu model.TenantUser
	err := row.Scan(&tu.ID, &tu.TenantID, &tu.UserID, &tu.Role, &tu.Permissions,
		&tu.Active, &tu.CreatedAt, &tu.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tu, nil
}

// GetActive returns the active membership for (tenant, user). Inactive or
// missing memberships are Forbidden, matching the authorization contract.
func (s *MembershipService) GetActive(ctx context.Context, tenantID, userID string) (*model.TenantUser, error) {
	tu, err := scanTenantUser(s.db.QueryRow(ctx,
		`SELECT `+tenantUserColumns+` FROM tenant_users WHERE tenant_id = $1 AND user_id = $2`,
		tenantID, userID))
	if err == pgx.ErrNoRows {
		return nil, Forbidden("not a member of this tenant")
	}
	if err != nil {
		return nil, Internal("get membership", err)
	}
	if !tu.Active {
		return nil, Forbidden("membership is deactivated")
	}
	return tu, nil
}

// Check verifies active membership and, when minRole is non-empty, that the
// member's role ranks at least as high in the hierarchy.
func (s *MembershipService) Check(ctx context.Context, tenantID, userID string, minRole model.Role) (*model.TenantUser, error) {
	tu, err := s.GetActive(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if minRole != "" && !tu.Role.AtLeast(minRole) {
		return nil, Forbidden(fmt.Sprintf("requires %s role or higher", minRole))
	}
	return tu, nil
}

func (s *MembershipService) ListByTenant(ctx context.Context, tenantID string, limit int, cursor string) ([]model.TenantUser, bool, error) {
	query := `SELECT ` + tenantUserColumns + ` FROM tenant_users WHERE tenant_id = $1`
	args := []any{tenantID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, Internal(fmt.Sprintf("list members for tenant %s", tenantID), err)
	}
	defer rows.Close()

	var members []model.TenantUser
	for rows.Next() {
		var tu model.TenantUser
		if err := rows.Scan(&tu.ID, &tu.TenantID, &tu.UserID, &tu.Role, &tu.Permissions,
			&tu.Active, &tu.CreatedAt, &tu.UpdatedAt); err != nil {
			return nil, false, Internal("scan membership", err)
		}
		members = append(members, tu)
	}
	if err := rows.Err(); err != nil {
		return nil, false, Internal("iterate memberships", err)
	}

	hasMore := len(members) > limit
	if hasMore {
		members = members[:limit]
	}
	return members, hasMore, nil
}

func (s *MembershipService) UpdateRole(ctx context.Context, tenantID, userID string, role model.Role) error {
	if !role.Valid() {
		return Conflict(fmt.Sprintf("unknown role %q", role))
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE tenant_users SET role = $1, updated_at = now() WHERE tenant_id = $2 AND user_id = $3`,
		role, tenantID, userID)
	if err != nil {
		return Internal("update member role", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("membership not found")
	}
	return nil
}

// Deactivate disables a membership without deleting the row. Members are
// never hard-deleted.
func (s *MembershipService) Deactivate(ctx context.Context, tenantID, userID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenant_users SET active = false, updated_at = now() WHERE tenant_id = $1 AND user_id = $2`,
		tenantID, userID)
	if err != nil {
		return Internal("deactivate membership", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("membership not found")
	}
	return nil
}

// upsertMembership inserts or reactivates the (tenant, user) membership
// inside a caller-owned transaction. The unique constraint on
// (tenant_id, user_id) guarantees at most one row per pair. The returned
// bool reports whether a new row was inserted, so callers can tell a fresh
// membership from a reactivated one; xmax is zero only for freshly inserted
// rows.
func upsertMembership(ctx context.Context, q Querier, id, tenantID, userID string, role model.Role) (bool, error) {
	var inserted bool
	err := q.QueryRow(ctx,
		`INSERT INTO tenant_users (id, tenant_id, user_id, role, permissions, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, '{}', true, now(), now())
		 ON CONFLICT (tenant_id, user_id)
		 DO UPDATE SET role = EXCLUDED.role, active = true, updated_at = now()
		 RETURNING (xmax = 0)`,
		id, tenantID, userID, role).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert membership: %w", err)
	}
	return inserted, nil
}
