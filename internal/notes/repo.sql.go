package notes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labtrack/labtrack/internal/platform/httpx"
)

// Repository persists notes in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListNotes(ctx context.Context) ([]Note, error) {
	return r.queryNotes(ctx, `
		SELECT id, sample_id, content, completed, created_at, updated_at
		FROM notes
		ORDER BY created_at DESC`)
}

func (r *Repository) ListNotesBySample(ctx context.Context, sampleID uuid.UUID) ([]Note, error) {
	return r.queryNotes(ctx, `
		SELECT id, sample_id, content, completed, created_at, updated_at
		FROM notes
		WHERE sample_id = $1
		ORDER BY created_at DESC`, sampleID)
}

func (r *Repository) queryNotes(ctx context.Context, sql string, args ...any) ([]Note, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.SampleID, &n.Content, &n.Completed, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) CreateNote(ctx context.Context, sampleID uuid.UUID, content string) (*Note, error) {
	var n Note
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notes (id, sample_id, content, completed, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, FALSE, now(), now())
		RETURNING id, sample_id, content, completed, created_at, updated_at`,
		sampleID, content).Scan(&n.ID, &n.SampleID, &n.Content, &n.Completed, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repository) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) (*Note, error) {
	var n Note
	err := r.pool.QueryRow(ctx, `
		UPDATE notes
		SET completed = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, sample_id, content, completed, created_at, updated_at`,
		id, completed).Scan(&n.ID, &n.SampleID, &n.Content, &n.Completed, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repository) DeleteNote(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// DeleteNotesForSample removes every note attached to a deleted sample.
func (r *Repository) DeleteNotesForSample(ctx context.Context, sampleID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE sample_id = $1`, sampleID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteOrphanNotes removes notes whose sample is gone, left behind when a
// per-sample sweep failed after the sample row was already deleted.
func (r *Repository) DeleteOrphanNotes(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notes n
		WHERE NOT EXISTS (SELECT 1 FROM samples s WHERE s.id = n.sample_id)`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
