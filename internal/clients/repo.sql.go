package clients

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

// ListClients returns all clients, newest first.
func (r *Repository) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, full_name, email, phone, created_at, updated_at FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// GetClient fetches a client by ID.
func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `SELECT id, full_name, email, phone, created_at, updated_at FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, httpx.ErrNotFound
		}
		return Client{}, err
	}
	return c, nil
}

// CreateClient inserts a new client.
func (r *Repository) CreateClient(ctx context.Context, fullName string, email, phone *string) (Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `
		INSERT INTO clients (id, full_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, full_name, email, phone, created_at, updated_at`,
		uuid.New(), fullName, email, phone).
		Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Client{}, err
	}
	return c, nil
}

// UpdateClient patches the non-nil fields of a client.
func (r *Repository) UpdateClient(ctx context.Context, id uuid.UUID, upd Update) (Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `
		UPDATE clients SET
			full_name = COALESCE($2, full_name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, full_name, email, phone, created_at, updated_at`,
		id, upd.FullName, upd.Email, upd.Phone).
		Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, httpx.ErrNotFound
		}
		return Client{}, err
	}
	return c, nil
}

// DeleteClient removes a client by ID.
func (r *Repository) DeleteClient(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
