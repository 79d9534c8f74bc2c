package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository computes dashboard statistics straight from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Collect runs the aggregate queries in one round trip. date_trunc('week')
// yields Monday, which matches how the lab counts its week.
func (r *Repository) Collect(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM clients),
			(SELECT count(*) FROM samples
			 WHERE jsonb_array_length(results) = 0
			    OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(results) e
				WHERE e->>'value' IS NULL)),
			(SELECT count(*) FROM samples WHERE created_at >= date_trunc('day', now())),
			(SELECT count(*) FROM samples WHERE created_at >= date_trunc('week', now())),
			(SELECT count(*) FROM samples WHERE created_at >= date_trunc('month', now())),
			(SELECT count(*) FROM samples WHERE created_at >= date_trunc('year', now()))`,
	).Scan(&s.TotalClients, &s.PendingSamples, &s.SamplesToday,
		&s.SamplesThisWeek, &s.SamplesThisMonth, &s.SamplesThisYear)
	return s, err
}
