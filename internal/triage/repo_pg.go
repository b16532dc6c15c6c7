package triage

import (
	"context"
	"database/sql"
	"fmt"
)

// PGBlockedRepo stores blocked attempts in Postgres.
type PGBlockedRepo struct {
	db *sql.DB
}

func NewPGBlockedRepo(db *sql.DB) *PGBlockedRepo {
	return &PGBlockedRepo{db: db}
}

func (r *PGBlockedRepo) InsertBlocked(ctx context.Context, attempt BlockedAttempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blocked_ai_logs (id, user_id, symptoms, raw_response, reason, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, attempt.ID, attempt.UserID, attempt.Symptoms, attempt.RawResponse, attempt.Reason, attempt.Model, attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert blocked attempt: %w", err)
	}
	return nil
}

func (r *PGBlockedRepo) ListRecentBlocked(ctx context.Context, limit int) ([]BlockedAttempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, symptoms, raw_response, reason, model, created_at
		FROM blocked_ai_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list blocked attempts: %w", err)
	}
	defer rows.Close()

	var out []BlockedAttempt
	for rows.Next() {
		var attempt BlockedAttempt
		if err := rows.Scan(&attempt.ID, &attempt.UserID, &attempt.Symptoms, &attempt.RawResponse, &attempt.Reason, &attempt.Model, &attempt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blocked attempt: %w", err)
		}
		out = append(out, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ BlockedRepo = (*PGBlockedRepo)(nil)
