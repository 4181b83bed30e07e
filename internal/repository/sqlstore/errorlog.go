package sqlstore

import (
	"context"
	"fmt"

	"github.com/wellnest/wellnest/internal/model"
)

// ErrorLogRepo implements repository.ErrorLogRepository.
type ErrorLogRepo struct{ db *DB }

// NewErrorLogRepo constructs the error log repository.
func NewErrorLogRepo(db *DB) *ErrorLogRepo { return &ErrorLogRepo{db: db} }

// Append adds a record; rows are never updated.
func (r *ErrorLogRepo) Append(ctx context.Context, rec model.ErrorRecord) error {
	const q = `INSERT INTO error_log (id, code, message, detail, op, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.SQL.ExecContext(ctx, r.db.q(q),
		rec.ID, rec.Code, rec.Message, rec.Detail, rec.Op, formatTime(rec.CreatedAt),
	); err != nil {
		return fmt.Errorf("append error log: %w", err)
	}
	return nil
}

// Recent returns the newest limit records.
func (r *ErrorLogRepo) Recent(ctx context.Context, limit int) ([]model.ErrorRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, code, message, detail, op, created_at FROM error_log ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.SQL.QueryContext(ctx, r.db.q(q), limit)
	if err != nil {
		return nil, fmt.Errorf("recent error log: %w", err)
	}
	defer rows.Close()

	var out []model.ErrorRecord
	for rows.Next() {
		var (
			rec       model.ErrorRecord
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.Message, &rec.Detail, &rec.Op, &createdAt); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
