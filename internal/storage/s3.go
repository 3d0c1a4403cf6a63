package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/crm/internal/core"
)

const scanConcurrency = 4

// Scanner measures per-tenant object storage consumption. Each tenant's
// files live under a "tenants/<id>/" prefix in a shared bucket; the scanner
// sums object sizes per prefix and records the total as usage.
type Scanner struct {
	logger zerolog.Logger
	client s3.ListObjectsV2APIClient
	bucket string
	usage  *core.UsageService
}

// NewScanner creates a Scanner against an S3-compatible endpoint.
func NewScanner(logger zerolog.Logger, endpoint, bucket, accessKey, secretKey string, usage *core.UsageService) *Scanner {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})
	return newScannerWithClient(logger, client, bucket, usage)
}

func newScannerWithClient(logger zerolog.Logger, client s3.ListObjectsV2APIClient, bucket string, usage *core.UsageService) *Scanner {
	return &Scanner{
		logger: logger.With().Str("component", "storage-scanner").Logger(),
		client: client,
		bucket: bucket,
		usage:  usage,
	}
}

// ScanTenant sums the sizes of all objects under the tenant's prefix and
// records the total against the current month.
func (s *Scanner) ScanTenant(ctx context.Context, tenantID string) (int64, error) {
	prefix := fmt.Sprintf("tenants/%s/", tenantID)

	var total int64
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("list objects for tenant %s: %w", tenantID, err)
		}
		for _, obj := range page.Contents {
			total += aws.ToInt64(obj.Size)
		}
	}

	if err := s.usage.SetStorageUsed(ctx, tenantID, total); err != nil {
		return 0, err
	}

	s.logger.Debug().Str("tenant_id", tenantID).Int64("bytes", total).Msg("scanned tenant storage")
	return total, nil
}

// ScanAll scans the given tenants concurrently. A failed tenant aborts the
// run; the scan is idempotent, so the next run picks up where this one broke.
func (s *Scanner) ScanAll(ctx context.Context, tenantIDs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for _, id := range tenantIDs {
		g.Go(func() error {
			_, err := s.ScanTenant(ctx, id)
			return err
		})
	}
	return g.Wait()
}
