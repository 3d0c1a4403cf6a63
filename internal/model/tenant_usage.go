package model

import "time"

// TenantUsage holds one month's counters for a tenant. Rows are created
// lazily on first increment; month rollover starts a fresh row.
type TenantUsage struct {
	ID          string    `json:"id" db:"id"`
	TenantID    string    `json:"tenant_id" db:"tenant_id"`
	Month       string    `json:"month" db:"month"` // YYYY-MM, UTC
	UserCount   int       `json:"user_count" db:"user_count"`
	StorageUsed int64     `json:"storage_used" db:"storage_used"`
	APICalls    int       `json:"api_calls" db:"api_calls"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UsageMonth formats t as a usage row month key.
func UsageMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// ResourceLimit reports one resource's consumption against its cap.
type ResourceLimit struct {
	Current  int64 `json:"current"`
	Limit    int64 `json:"limit"`
	Exceeded bool  `json:"exceeded"`
}

// LimitReport holds per-resource limit states so callers can branch on the
// specific exceeded resource.
type LimitReport struct {
	Users    ResourceLimit `json:"users"`
	Storage  ResourceLimit `json:"storage"`
	APICalls ResourceLimit `json:"api_calls"`
}
