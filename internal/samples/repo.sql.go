package samples

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labtrack/labtrack/internal/platform/httpx"
	"github.com/labtrack/labtrack/internal/statuses"
)

// Repository persists samples in PostgreSQL. Result sheets live in a JSONB
// column; client and status names are joined in at read time so deleted
// references degrade to fallback labels instead of breaking the listing.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const viewQuery = `
	SELECT s.id, s.client_id, s.status_id, s.analysis_name, s.results,
	       s.created_at, s.updated_at,
	       c.full_name, st.name, st.color
	FROM samples s
	LEFT JOIN clients c ON c.id = s.client_id
	LEFT JOIN sample_statuses st ON st.id = s.status_id`

func scanView(row pgx.Row) (*View, error) {
	var (
		v           View
		results     []byte
		clientName  *string
		statusName  *string
		statusColor *string
	)
	err := row.Scan(&v.ID, &v.ClientID, &v.StatusID, &v.AnalysisName, &results,
		&v.CreatedAt, &v.UpdatedAt, &clientName, &statusName, &statusColor)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(results, &v.Results); err != nil {
		return nil, err
	}
	if v.Results == nil {
		v.Results = []Result{}
	}
	v.ClientName = UnknownClientName
	if clientName != nil {
		v.ClientName = *clientName
	}
	v.StatusName = UnknownStatusName
	v.StatusColor = statuses.FallbackColor
	if statusName != nil {
		v.StatusName = *statusName
	}
	if statusColor != nil {
		v.StatusColor = *statusColor
	}
	return &v, nil
}

func (r *Repository) ListSamples(ctx context.Context) ([]View, error) {
	rows, err := r.pool.Query(ctx, viewQuery+` ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *Repository) ListSamplesByClient(ctx context.Context, clientID uuid.UUID) ([]View, error) {
	rows, err := r.pool.Query(ctx, viewQuery+` WHERE s.client_id = $1 ORDER BY s.created_at DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *Repository) GetSample(ctx context.Context, id uuid.UUID) (*View, error) {
	return scanView(r.pool.QueryRow(ctx, viewQuery+` WHERE s.id = $1`, id))
}

func (r *Repository) CreateSample(ctx context.Context, s Sample) (*View, error) {
	results, err := json.Marshal(s.Results)
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	err = r.pool.QueryRow(ctx, `
		INSERT INTO samples (id, client_id, status_id, analysis_name, results, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, now(), now())
		RETURNING id`,
		s.ClientID, s.StatusID, s.AnalysisName, results).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetSample(ctx, id)
}

func (r *Repository) UpdateSample(ctx context.Context, id uuid.UUID, upd Update) (*View, error) {
	var results []byte
	if upd.Results != nil {
		var err error
		results, err = json.Marshal(*upd.Results)
		if err != nil {
			return nil, err
		}
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE samples
		SET client_id = COALESCE($2, client_id),
		    status_id = COALESCE($3, status_id),
		    results = COALESCE($4, results),
		    updated_at = now()
		WHERE id = $1`,
		id, upd.ClientID, upd.StatusID, results)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, httpx.ErrNotFound
	}
	return r.GetSample(ctx, id)
}

func (r *Repository) DeleteSample(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM samples WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
