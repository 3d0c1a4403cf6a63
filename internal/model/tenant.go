package model

import (
	"encoding/json"
	"time"
)

type Tenant struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Subdomain     string          `json:"subdomain" db:"subdomain"`
	CustomDomain  *string         `json:"custom_domain,omitempty" db:"custom_domain"`
	BillingEmail  string          `json:"billing_email" db:"billing_email"`
	Status        string          `json:"status" db:"status"`
	PlanID        *string         `json:"plan_id,omitempty" db:"plan_id"`
	AdminUserID   *string         `json:"admin_user_id,omitempty" db:"admin_user_id"`
	MaxUsers      int             `json:"max_users" db:"max_users"`
	StorageLimit  int64           `json:"storage_limit" db:"storage_limit"`
	APICallsLimit int             `json:"api_calls_limit" db:"api_calls_limit"`
	Settings      json.RawMessage `json:"settings" db:"settings"`
	TrialEndsAt   *time.Time      `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// TrialDuration is how long a newly provisioned tenant stays on trial.
const TrialDuration = 14 * 24 * time.Hour

// Default limits for tenants created without a plan.
const (
	DefaultMaxUsers      = 5
	DefaultStorageLimit  = 1 << 30 // 1 GiB
	DefaultAPICallsLimit = 10000
)
