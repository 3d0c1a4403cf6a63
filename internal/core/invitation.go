package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/crm/internal/model"
	"github.com/edvin/crm/internal/platform"
)

const invitationColumns = `id, tenant_id, email, role, inviter_id, token, status, expires_at, created_at, updated_at`

type InvitationService struct {
	db    DB
	usage *UsageService
}

func NewInvitationService(db DB, usage *UsageService) *InvitationService {
	return &InvitationService{db: db, usage: usage}
}

func scanInvitation(row pgx.Row) (*model.TenantInvitation, error) {
	var inv model.TenantInvitation
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.Role, &inv.InviterID,
		&inv.Token, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Invite creates a pending invitation for the tenant. The member limit is
// enforced at invite time so a tenant at capacity cannot queue up new seats.
func (s *InvitationService) Invite(ctx context.Context, tenant *model.Tenant, email string, role model.Role, inviterID string) (*model.TenantInvitation, error) {
	if !role.Valid() {
		return nil, Conflict(fmt.Sprintf("unknown role %q", role))
	}

	report, err := s.usage.CheckLimits(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if report.Users.Exceeded {
		return nil, LimitExceeded(fmt.Sprintf("tenant has reached its limit of %d users", tenant.MaxUsers))
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM tenant_users tu
		   JOIN users u ON u.id = tu.user_id
		   WHERE tu.tenant_id = $1 AND u.email = $2 AND tu.active)`,
		tenant.ID, email).Scan(&exists)
	if err != nil {
		return nil, Internal("check existing membership", err)
	}
	if exists {
		return nil, Conflict(fmt.Sprintf("%s is already a member of this tenant", email))
	}

	now := time.Now().UTC()
	inv := &model.TenantInvitation{
		ID:        platform.NewID(),
		TenantID:  tenant.ID,
		Email:     email,
		Role:      role,
		InviterID: inviterID,
		Token:     platform.NewToken(32),
		Status:    model.InvitationPending,
		ExpiresAt: now.Add(model.InvitationTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO tenant_invitations (id, tenant_id, email, role, inviter_id, token, status, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		inv.ID, inv.TenantID, inv.Email, inv.Role, inv.InviterID, inv.Token, inv.Status, inv.ExpiresAt, now)
	if err != nil {
		if isUniqueViolation(err, "tenant_invitations_pending_email_idx") {
			return nil, Conflict(fmt.Sprintf("%s already has a pending invitation", email))
		}
		return nil, Internal("create invitation", err)
	}

	return inv, nil
}

// RedeemParams carries the data needed to accept an invitation. DisplayName
// and Password are only used when the invited email has no account yet.
type RedeemParams struct {
	Token       string
	DisplayName string
	Password    string
}

// Redeem accepts an invitation by token. The status flip, the membership
// upsert, and the usage increment commit in one transaction, and the
// conditional status update guarantees each invitation is redeemed at most
// once even under concurrent attempts.
func (s *InvitationService) Redeem(ctx context.Context, params RedeemParams) (*model.TenantUser, error) {
	inv, err := scanInvitation(s.db.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM tenant_invitations WHERE token = $1`, params.Token))
	if err == pgx.ErrNoRows {
		return nil, NotFound("invitation not found")
	}
	if err != nil {
		return nil, Internal("look up invitation", err)
	}

	if inv.Status != model.InvitationPending {
		return nil, Conflict("invitation has already been used")
	}
	if time.Now().After(inv.ExpiresAt) {
		// Mark it expired so later attempts fail fast. Best effort.
		_, _ = s.db.Exec(ctx,
			`UPDATE tenant_invitations SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
			model.InvitationExpired, inv.ID, model.InvitationPending)
		return nil, Conflict("invitation has expired")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, Internal("begin redemption", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE tenant_invitations SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		model.InvitationAccepted, inv.ID, model.InvitationPending)
	if err != nil {
		return nil, Internal("accept invitation", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, Conflict("invitation has already been used")
	}

	now := time.Now().UTC()

	var userID string
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, inv.Email).Scan(&userID)
	if err == pgx.ErrNoRows {
		if params.Password == "" {
			return nil, Conflict("a password is required to create an account")
		}
		passwordHash, hashErr := HashPassword(params.Password)
		if hashErr != nil {
			return nil, Internal("hash password", hashErr)
		}
		userID = platform.NewID()
		_, err = tx.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, display_name, active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, true, $5, $5)`,
			userID, inv.Email, passwordHash, params.DisplayName, now)
		if err != nil {
			return nil, Internal("create invited user", err)
		}
	} else if err != nil {
		return nil, Internal("look up invited user", err)
	}

	membershipID := platform.NewID()
	inserted, err := upsertMembership(ctx, tx, membershipID, inv.TenantID, userID, inv.Role)
	if err != nil {
		return nil, Internal("grant membership", err)
	}

	// A reactivated membership is not a new seat; only count fresh rows.
	if inserted {
		if err := incrementUserCount(ctx, tx, inv.TenantID, now); err != nil {
			return nil, Internal("record member usage", err)
		}
	}

	tu, err := scanTenantUser(tx.QueryRow(ctx,
		`SELECT `+tenantUserColumns+` FROM tenant_users WHERE tenant_id = $1 AND user_id = $2`,
		inv.TenantID, userID))
	if err != nil {
		return nil, Internal("read granted membership", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, Internal("commit redemption", err)
	}

	return tu, nil
}

// ListByTenant returns a tenant's invitations, newest first.
func (s *InvitationService) ListByTenant(ctx context.Context, tenantID string) ([]model.TenantInvitation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+invitationColumns+` FROM tenant_invitations WHERE tenant_id = $1 ORDER BY created_at DESC`,
		tenantID)
	if err != nil {
		return nil, Internal("list invitations", err)
	}
	defer rows.Close()

	var invitations []model.TenantInvitation
	for rows.Next() {
		var inv model.TenantInvitation
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.Role, &inv.InviterID,
			&inv.Token, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, Internal("scan invitation", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, Internal("iterate invitations", err)
	}
	return invitations, nil
}

// Revoke expires a pending invitation so its token can no longer be redeemed.
func (s *InvitationService) Revoke(ctx context.Context, tenantID, invitationID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenant_invitations SET status = $1, updated_at = now()
		 WHERE id = $2 AND tenant_id = $3 AND status = $4`,
		model.InvitationExpired, invitationID, tenantID, model.InvitationPending)
	if err != nil {
		return Internal("revoke invitation", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("pending invitation not found")
	}
	return nil
}
