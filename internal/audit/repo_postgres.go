package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresRepo appends events to the transfer_events table. Append-only:
// this repository issues no updates or deletes.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) (*PostgresRepo, error) {
	if db == nil {
		return nil, errors.New("audit: db is required")
	}
	return &PostgresRepo{db: db}, nil
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transfer_events (id, type, call_id, department, token, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, string(e.Type), e.CallID, e.Department, e.Token, e.Message, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit: append event: %w", err)
	}
	return nil
}
