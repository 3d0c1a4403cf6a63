package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/crm/internal/model"
	"github.com/edvin/crm/internal/platform"
)

const usageColumns = `id, tenant_id, month, user_count, storage_used, api_calls, created_at, updated_at`

type UsageService struct {
	db     DB
	logger zerolog.Logger

	trackCh chan string
}

func NewUsageService(db DB, logger zerolog.Logger) *UsageService {
	s := &UsageService{
		db:      db,
		logger:  logger,
		trackCh: make(chan string, 1024),
	}
	go s.trackLoop()
	return s
}

// Current returns the usage row for the given month, or a zero-valued row
// when nothing has been recorded yet. Months without activity have no rows.
func (s *UsageService) Current(ctx context.Context, tenantID, month string) (*model.TenantUsage, error) {
	var u model.TenantUsage
	err := s.db.QueryRow(ctx,
		`SELECT `+usageColumns+` FROM tenant_usage WHERE tenant_id = $1 AND month = $2`,
		tenantID, month,
	).Scan(&u.ID, &u.TenantID, &u.Month, &u.UserCount, &u.StorageUsed, &u.APICalls,
		&u.CreatedAt, &u.UpdatedAt)
	if err == pgx.ErrNoRows {
		return &model.TenantUsage{TenantID: tenantID, Month: month}, nil
	}
	if err != nil {
		return nil, Internal("get usage", err)
	}
	return &u, nil
}

// History returns up to months of usage rows, newest first.
func (s *UsageService) History(ctx context.Context, tenantID string, months int) ([]model.TenantUsage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+usageColumns+` FROM tenant_usage WHERE tenant_id = $1 ORDER BY month DESC LIMIT $2`,
		tenantID, months)
	if err != nil {
		return nil, Internal("list usage history", err)
	}
	defer rows.Close()

	var usage []model.TenantUsage
	for rows.Next() {
		var u model.TenantUsage
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Month, &u.UserCount, &u.StorageUsed, &u.APICalls,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, Internal("scan usage", err)
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, Internal("iterate usage", err)
	}
	return usage, nil
}

// IncrementAPICalls bumps the current month's call counter, creating the row
// on first use.
func (s *UsageService) IncrementAPICalls(ctx context.Context, tenantID string) error {
	now := time.Now()
	_, err := s.db.Exec(ctx,
		`INSERT INTO tenant_usage (id, tenant_id, month, user_count, storage_used, api_calls, created_at, updated_at)
		 VALUES ($1, $2, $3, 0, 0, 1, now(), now())
		 ON CONFLICT (tenant_id, month)
		 DO UPDATE SET api_calls = tenant_usage.api_calls + 1, updated_at = now()`,
		platform.NewID(), tenantID, model.UsageMonth(now))
	if err != nil {
		return Internal("increment api calls", err)
	}
	return nil
}

// TrackAPICall queues a best-effort usage increment. Tracking never blocks
// and never fails the request being tracked; on a full queue the call is
// dropped.
func (s *UsageService) TrackAPICall(tenantID string) {
	select {
	case s.trackCh <- tenantID:
	default:
		s.logger.Warn().Str("tenant_id", tenantID).Msg("usage tracking queue full, dropping api call")
	}
}

func (s *UsageService) trackLoop() {
	for tenantID := range s.trackCh {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.IncrementAPICalls(ctx, tenantID); err != nil {
			s.logger.Error().Err(err).Str("tenant_id", tenantID).Msg("track api call")
		}
		cancel()
	}
}

// Close drains the tracking queue and stops the background worker.
func (s *UsageService) Close() {
	close(s.trackCh)
}

// incrementUserCount bumps the current month's member counter inside a
// caller-owned transaction, so membership changes and their usage effect
// commit together.
func incrementUserCount(ctx context.Context, q Querier, tenantID string, now time.Time) error {
	_, err := q.Exec(ctx,
		`INSERT INTO tenant_usage (id, tenant_id, month, user_count, storage_used, api_calls, created_at, updated_at)
		 VALUES ($1, $2, $3, 1, 0, 0, now(), now())
		 ON CONFLICT (tenant_id, month)
		 DO UPDATE SET user_count = tenant_usage.user_count + 1, updated_at = now()`,
		platform.NewID(), tenantID, model.UsageMonth(now))
	if err != nil {
		return fmt.Errorf("increment user count: %w", err)
	}
	return nil
}

// SetStorageUsed records the scanned storage total for the current month.
// GREATEST keeps a stale scan from shrinking an already recorded peak.
func (s *UsageService) SetStorageUsed(ctx context.Context, tenantID string, bytes int64) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO tenant_usage (id, tenant_id, month, user_count, storage_used, api_calls, created_at, updated_at)
		 VALUES ($1, $2, $3, 0, $4, 0, now(), now())
		 ON CONFLICT (tenant_id, month)
		 DO UPDATE SET storage_used = GREATEST(tenant_usage.storage_used, EXCLUDED.storage_used), updated_at = now()`,
		platform.NewID(), tenantID, model.UsageMonth(time.Now()), bytes)
	if err != nil {
		return Internal("set storage used", err)
	}
	return nil
}

// CheckLimits compares the tenant's current-month usage against its limits.
func (s *UsageService) CheckLimits(ctx context.Context, tenant *model.Tenant) (*model.LimitReport, error) {
	usage, err := s.Current(ctx, tenant.ID, model.UsageMonth(time.Now()))
	if err != nil {
		return nil, err
	}

	report := &model.LimitReport{
		Users: model.ResourceLimit{
			Current: int64(usage.UserCount),
			Limit:   int64(tenant.MaxUsers),
		},
		Storage: model.ResourceLimit{
			Current: usage.StorageUsed,
			Limit:   tenant.StorageLimit,
		},
		APICalls: model.ResourceLimit{
			Current: int64(usage.APICalls),
			Limit:   int64(tenant.APICallsLimit),
		},
	}
	report.Users.Exceeded = report.Users.Current >= report.Users.Limit
	report.Storage.Exceeded = report.Storage.Current >= report.Storage.Limit
	report.APICalls.Exceeded = report.APICalls.Current >= report.APICalls.Limit
	return report, nil
}
