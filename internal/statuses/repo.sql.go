package statuses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labtrack/labtrack/internal/platform/httpx"
)

// Repository persists sample statuses in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListStatuses(ctx context.Context) ([]Status, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, color, created_at, updated_at
		FROM sample_statuses
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Status
	for rows.Next() {
		var s Status
		if err := rows.Scan(&s.ID, &s.Name, &s.Color, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) GetStatus(ctx context.Context, id uuid.UUID) (*Status, error) {
	var s Status
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, color, created_at, updated_at
		FROM sample_statuses
		WHERE id = $1`, id).Scan(&s.ID, &s.Name, &s.Color, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateStatus(ctx context.Context, name, color string) (*Status, error) {
	var s Status
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sample_statuses (id, name, color, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, now(), now())
		RETURNING id, name, color, created_at, updated_at`,
		name, color).Scan(&s.ID, &s.Name, &s.Color, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if httpx.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, upd Update) (*Status, error) {
	var s Status
	err := r.pool.QueryRow(ctx, `
		UPDATE sample_statuses
		SET name = COALESCE($2, name),
		    color = COALESCE($3, color),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, color, created_at, updated_at`,
		id, upd.Name, upd.Color).Scan(&s.ID, &s.Name, &s.Color, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		if httpx.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) DeleteStatus(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sample_statuses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
