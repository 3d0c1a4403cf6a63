package core

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/crm/internal/model"
)

const userColumns = `id, email, password_hash, display_name, active, created_at, updated_at`

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, NotFound("user not found")
	}
	if err != nil {
		return nil, Internal("get user", err)
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err == pgx.ErrNoRows {
		return nil, NotFound("user not found")
	}
	if err != nil {
		return nil, Internal("get user by email", err)
	}
	return u, nil
}

// Deactivate disables platform-wide login for a user. Their memberships stay
// in place but no longer grant access.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return Internal("deactivate user", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("user not found")
	}
	return nil
}
