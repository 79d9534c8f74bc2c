package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labtrack/labtrack/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users enriched with their role name. The join is a
// left join: a dangling or absent role reference yields a NULL name, mapped
// to the unassigned sentinel by the caller.
func (r *Repository) ListUsers(ctx context.Context) ([]UserWithRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.handle, u.role_id, u.created_at, u.updated_at, r.name
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []UserWithRole
	for rows.Next() {
		var user UserWithRole
		var roleName *string
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Handle, &user.RoleID, &user.CreatedAt, &user.UpdatedAt, &roleName); err != nil {
			return nil, err
		}
		user.RoleName = displayRoleName(roleName)
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetByHandle fetches a user by their identity-provider handle.
func (r *Repository) GetByHandle(ctx context.Context, handle string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `SELECT id, name, email, handle, role_id, created_at, updated_at FROM users WHERE handle = $1`, handle).
		Scan(&user.ID, &user.Name, &user.Email, &user.Handle, &user.RoleID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// Upsert inserts a user or, when the email already exists, refreshes the
// display name. Email is the dedup key the lifecycle feed guarantees.
func (r *Repository) Upsert(ctx context.Context, name, email, handle string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, handle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()`,
		uuid.New(), name, email, handle)
	return err
}

// DeleteByHandle removes the user row for a departed identity.
func (r *Repository) DeleteByHandle(ctx context.Context, handle string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE handle = $1`, handle)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
