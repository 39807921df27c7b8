package audit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// TimelineQuery carries bound parameters for the timeline query. Invalid
// (null) values disable their filter.
type TimelineQuery struct {
	FromAt pgtype.Timestamptz
	ToAt   pgtype.Timestamptz
	Actor  pgtype.Text
	Role   pgtype.Text
	Action pgtype.Text
	Offset int32
	Limit  int32
}

// Repository loads audit rows.
type Repository interface {
	Timeline(ctx context.Context, q TimelineQuery) ([]TimelineRow, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGRepository reads audit_logs through pgx.
type PGRepository struct {
	db querier
}

// NewRepository returns a PGRepository. pool is usually a *pgxpool.Pool.
func NewRepository(pool querier) *PGRepository {
	return &PGRepository{db: pool}
}

const timelineSQL = `SELECT occurred_at, actor_id, role, action, path, route, COALESCE(module, '')
FROM audit_logs
WHERE ($1::timestamptz IS NULL OR occurred_at >= $1)
  AND ($2::timestamptz IS NULL OR occurred_at < $2)
  AND ($3::text IS NULL OR actor_id = $3)
  AND ($4::text IS NULL OR role = $4)
  AND ($5::text IS NULL OR action = $5)
ORDER BY occurred_at DESC, id DESC
OFFSET $6 LIMIT $7`

// Timeline runs the filtered window query, newest first.
func (r *PGRepository) Timeline(ctx context.Context, q TimelineQuery) ([]TimelineRow, error) {
	rows, err := r.db.Query(ctx, timelineSQL, q.FromAt, q.ToAt, q.Actor, q.Role, q.Action, q.Offset, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimelineRow
	for rows.Next() {
		var (
			row TimelineRow
			at  pgtype.Timestamptz
		)
		if err := rows.Scan(&at, &row.Actor, &row.Role, &row.Action, &row.Path, &row.Route, &row.Module); err != nil {
			return nil, err
		}
		if at.Valid {
			row.At = at.Time
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
