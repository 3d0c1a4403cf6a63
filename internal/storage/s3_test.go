package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/crm/internal/core"
)

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

func (m *mockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

// fakeS3 returns one page of objects per configured prefix.
type fakeS3 struct {
	pages map[string][]s3types.Object
	err   error
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.ListObjectsV2Output{
		Contents:    f.pages[aws.ToString(in.Prefix)],
		IsTruncated: aws.Bool(false),
	}, nil
}

func obj(key string, size int64) s3types.Object {
	return s3types.Object{Key: aws.String(key), Size: aws.Int64(size)}
}

func TestScanTenant_SumsObjectSizes(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(args []any) bool {
		return args[1] == "tenant-1" && args[3] == int64(300)
	})).Return(pgconn.NewCommandTag("INSERT 0 1"), nil).Once()

	client := &fakeS3{pages: map[string][]s3types.Object{
		"tenants/tenant-1/": {
			obj("tenants/tenant-1/a.pdf", 100),
			obj("tenants/tenant-1/b.pdf", 200),
		},
	}}
	scanner := newScannerWithClient(zerolog.Nop(), client, "crm-files", core.NewUsageService(db, zerolog.Nop()))

	total, err := scanner.ScanTenant(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), total)
	db.AssertExpectations(t)
}

func TestScanTenant_EmptyPrefix(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(args []any) bool {
		return args[3] == int64(0)
	})).Return(pgconn.NewCommandTag("INSERT 0 1"), nil).Once()

	scanner := newScannerWithClient(zerolog.Nop(), &fakeS3{}, "crm-files", core.NewUsageService(db, zerolog.Nop()))

	total, err := scanner.ScanTenant(context.Background(), "tenant-empty")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestScanAll_PropagatesListError(t *testing.T) {
	db := &mockDB{}
	scanner := newScannerWithClient(zerolog.Nop(), &fakeS3{err: errors.New("endpoint down")},
		"crm-files", core.NewUsageService(db, zerolog.Nop()))

	err := scanner.ScanAll(context.Background(), []string{"tenant-1", "tenant-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint down")
	db.AssertNotCalled(t, "Exec")
}
