package analyses

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labtrack/labtrack/internal/platform/httpx"
)

// Repository persists analysis templates in PostgreSQL. Field lists are
// stored as a JSONB column.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAnalysis(row pgx.Row) (*Analysis, error) {
	var (
		a      Analysis
		fields []byte
	)
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Type, &fields, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &a.Fields); err != nil {
		return nil, err
	}
	if a.Fields == nil {
		a.Fields = []Field{}
	}
	return &a, nil
}

func (r *Repository) ListAnalyses(ctx context.Context) ([]Analysis, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, type, fields, created_at, updated_at
		FROM analyses
		ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repository) GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	return scanAnalysis(r.pool.QueryRow(ctx, `
		SELECT id, name, description, type, fields, created_at, updated_at
		FROM analyses
		WHERE id = $1`, id))
}

// GetAnalysisByName supports sample registration, which references
// analyses by display name.
func (r *Repository) GetAnalysisByName(ctx context.Context, name string) (*Analysis, error) {
	return scanAnalysis(r.pool.QueryRow(ctx, `
		SELECT id, name, description, type, fields, created_at, updated_at
		FROM analyses
		WHERE name = $1`, name))
}

func (r *Repository) CreateAnalysis(ctx context.Context, a Analysis) (*Analysis, error) {
	fields, err := json.Marshal(a.Fields)
	if err != nil {
		return nil, err
	}
	created, err := scanAnalysis(r.pool.QueryRow(ctx, `
		INSERT INTO analyses (id, name, description, type, fields, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, now(), now())
		RETURNING id, name, description, type, fields, created_at, updated_at`,
		a.Name, a.Description, a.Type, fields))
	if err != nil {
		if httpx.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

func (r *Repository) UpdateAnalysis(ctx context.Context, id uuid.UUID, upd Update) (*Analysis, error) {
	var fields []byte
	if upd.Fields != nil {
		var err error
		fields, err = json.Marshal(*upd.Fields)
		if err != nil {
			return nil, err
		}
	}
	updated, err := scanAnalysis(r.pool.QueryRow(ctx, `
		UPDATE analyses
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    type = COALESCE($4, type),
		    fields = COALESCE($5, fields),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, type, fields, created_at, updated_at`,
		id, upd.Name, upd.Description, upd.Type, fields))
	if err != nil {
		if httpx.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return updated, nil
}

func (r *Repository) DeleteAnalysis(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
