package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/crm/internal/model"
)

func membershipScanFunc(tenantID, userID string, role model.Role, active bool) func(dest ...any) error {
	now := time.Now().Truncate(time.Microsecond)
	return func(dest ...any) error {
		*(dest[0].(*string)) = "membership-1"
		*(dest[1].(*string)) = tenantID
		*(dest[2].(*string)) = userID
		*(dest[3].(*model.Role)) = role
		*(dest[4].(*json.RawMessage)) = json.RawMessage(`{}`)
		*(dest[5].(*bool)) = active
		*(dest[6].(*time.Time)) = now
		*(dest[7].(*time.Time)) = now
		return nil
	}
}

// insertedRow mimics the upsert's RETURNING (xmax = 0) result: true for a
// fresh insert, false for a reactivated row.
func insertedRow(inserted bool) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*bool)) = inserted
		return nil
	}}
}

// ---------- GetActive ----------

func TestMembershipService_GetActive_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewMembershipService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: membershipScanFunc("tenant-1", "user-1", model.RoleUser, true)}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	tu, err := svc.GetActive(ctx, "tenant-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, tu.Role)
	db.AssertExpectations(t)
}

func TestMembershipService_GetActive_NotAMember(t *testing.T) {
	db := &mockDB{}
	svc := NewMembershipService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	tu, err := svc.GetActive(ctx, "tenant-1", "stranger")
	require.Error(t, err)
	assert.Nil(t, tu)
	assert.Equal(t, KindForbidden, KindOf(err))
	db.AssertExpectations(t)
}

func TestMembershipService_GetActive_Deactivated(t *testing.T) {
	db := &mockDB{}
	svc := NewMembershipService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: membershipScanFunc("tenant-1", "user-1", model.RoleUser, false)}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	tu, err := svc.GetActive(ctx, "tenant-1", "user-1")
	require.Error(t, err)
	assert.Nil(t, tu)
	assert.Equal(t, KindForbidden, KindOf(err))
	db.AssertExpectations(t)
}

// ---------- Check ----------

func TestMembershipService_Check_RoleMatrix(t *testing.T) {
	tests := []struct {
		memberRole model.Role
		minRole    model.Role
		allowed    bool
	}{
		{model.RoleAdmin, model.RoleAdmin, true},
		{model.RoleAdmin, model.RoleReadonly, true},
		{model.RoleManager, model.RoleAdmin, false},
		{model.RoleManager, model.RoleManager, true},
		{model.RoleUser, model.RoleManager, false},
		{model.RoleUser, model.RoleUser, true},
		{model.RoleReadonly, model.RoleUser, false},
		{model.RoleReadonly, model.RoleReadonly, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.memberRole)+"_needs_"+string(tt.minRole), func(t *testing.T) {
			db := &mockDB{}
			svc := NewMembershipService(db)
			ctx := context.Background()

			row := &mockRow{scanFunc: membershipScanFunc("tenant-1", "user-1", tt.memberRole, true)}
			db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

			tu, err := svc.Check(ctx, "tenant-1", "user-1", tt.minRole)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.memberRole, tu.Role)
			} else {
				require.Error(t, err)
				assert.Equal(t, KindForbidden, KindOf(err))
			}
		})
	}
}

func TestMembershipService_Check_NoMinRole(t *testing.T) {
	db := &mockDB{}
	svc := NewMembershipService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: membershipScanFunc("tenant-1", "user-1", model.RoleReadonly, true)}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	tu, err := svc.Check(ctx, "tenant-1", "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleReadonly, tu.Role)
}

// ---------- ListByTenant ----------

func TestMembershipService_ListByTenant_Pagination(t *testing.T) {
	db := &mockDB{}
	svc := NewMembershipService(db)
	ctx := context.Background()

	rows := newMockRows(
		membershipScanFunc("tenant-1", "user-1", model.RoleAdmin, true),
		membershipScanFunc("tenant-1", "user-2", model.RoleUser, true),
	)
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	members, hasMore, err := svc.ListByTenant(ctx, "tenant-1", 1, "")
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.True(t, hasMore)
	db.AssertExpectations(t)
}

// ---------- UpdateRole ----------

func TestMembershipService_UpdateRole_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewMembershipService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := svc.UpdateRole(ctx, "tenant-1", "user-1", model.RoleManager)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestMembershipService_UpdateRole_UnknownRole(t *testing.T) {
	db := &mockDB{}
	svc := NewMembershipService(db)
	ctx := context.Background()

	err := svc.UpdateRole(ctx, "tenant-1", "user-1", "superadmin")
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	db.AssertNotCalled(t, "Exec")
}

// ---------- Deactivate ----------

func TestMembershipService_Deactivate_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewMembershipService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := svc.Deactivate(ctx, "tenant-1", "ghost")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	db.AssertExpectations(t)
}
