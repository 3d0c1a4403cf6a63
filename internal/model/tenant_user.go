package model

import (
	"encoding/json"
	"time"
)

// TenantUser binds a platform user to a tenant with a role. At most one row
// exists per (tenant, user) pair; members are deactivated, not deleted.
type TenantUser struct {
	ID          string          `json:"id" db:"id"`
	TenantID    string          `json:"tenant_id" db:"tenant_id"`
	UserID      string          `json:"user_id" db:"user_id"`
	Role        Role            `json:"role" db:"role"`
	Permissions json.RawMessage `json:"permissions" db:"permissions"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
