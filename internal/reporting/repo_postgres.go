package reporting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"callbridge/internal/calls"
)

// PostgresRepo reads stored call legs from the call_legs table populated
// by the provider's status pipeline. Read-only: this repository issues no
// writes.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) (*PostgresRepo, error) {
	if db == nil {
		return nil, errors.New("reporting: db is required")
	}
	return &PostgresRepo{db: db}, nil
}

func (r *PostgresRepo) ListCalls(ctx context.Context, req ListCallsRequest) ([]calls.Call, error) {
	var (
		where = []string{"created_at >= $1", "created_at < $2"}
		args  = []any{req.Range.From, req.Range.To}
	)
	if req.Status != "" {
		args = append(args, string(req.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if req.Role != "" {
		args = append(args, string(req.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	args = append(args, req.Limit)

	q := fmt.Sprintf(`
		SELECT provider_call_id, role, from_number, to_number, status, duration, created_at, updated_at
		FROM call_legs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d`,
		strings.Join(where, " AND "), len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("reporting: list calls: %w", err)
	}
	defer rows.Close()

	out := make([]calls.Call, 0)
	for rows.Next() {
		var c calls.Call
		if err := rows.Scan(
			&c.ProviderCallID,
			&c.Role,
			&c.From,
			&c.To,
			&c.Status,
			&c.DurationSeconds,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("reporting: scan call: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reporting: iterate calls: %w", err)
	}
	return out, nil
}
