package model

import "time"

type SubscriptionPlan struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	PriceCents    int       `json:"price_cents" db:"price_cents"`
	BillingCycle  string    `json:"billing_cycle" db:"billing_cycle"` // monthly or yearly
	MaxUsers      int       `json:"max_users" db:"max_users"`
	StorageLimit  int64     `json:"storage_limit" db:"storage_limit"`
	APICallsLimit int       `json:"api_calls_limit" db:"api_calls_limit"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type TenantSubscription struct {
	ID        string     `json:"id" db:"id"`
	TenantID  string     `json:"tenant_id" db:"tenant_id"`
	PlanID    string     `json:"plan_id" db:"plan_id"`
	Status    string     `json:"status" db:"status"`
	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty" db:"ends_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
