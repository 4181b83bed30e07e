package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wellnest/wellnest/internal/model"
)

const focusKind = "focus"

// FocusRepo implements repository.FocusRepository.
type FocusRepo struct{ db *DB }

// NewFocusRepo constructs a focus session repository.
func NewFocusRepo(db *DB) *FocusRepo { return &FocusRepo{db: db} }

const focusColumns = `id, duration, break_duration, task_id, start_time, end_time, completed, interrupted,
	interruption_count, pomodoro_count`

// Start inserts the session row and points the active pointer at it.
func (r *FocusRepo) Start(ctx context.Context, s model.FocusSession) error {
	const ins = `INSERT INTO focus_sessions (` + focusColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	const ptr = `INSERT INTO active_sessions (kind, session_id) VALUES (?, ?)
		ON CONFLICT (kind) DO UPDATE SET session_id = excluded.session_id`

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.db.q(ins),
			s.ID, s.Duration, s.BreakDuration, nullString(s.TaskID), formatTime(s.StartTime),
			formatTimePtr(s.EndTime), boolInt(s.Completed), boolInt(s.Interrupted),
			s.InterruptionCount, s.PomodoroCount,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, r.db.q(ptr), focusKind, s.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("start focus session: %w", err)
	}
	return nil
}

// Complete writes only the completion delta and releases the active pointer.
func (r *FocusRepo) Complete(ctx context.Context, s model.FocusSession) error {
	const upd = `UPDATE focus_sessions SET end_time = ?, completed = 1, interrupted = ?,
		interruption_count = ?, pomodoro_count = ? WHERE id = ?`
	const clr = `DELETE FROM active_sessions WHERE kind = ? AND session_id = ?`

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := execOne(ctx, tx, r.db.q(upd),
			formatTimePtr(s.EndTime), boolInt(s.Interrupted), s.InterruptionCount, s.PomodoroCount, s.ID,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, r.db.q(clr), focusKind, s.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("complete focus session %s: %w", s.ID, err)
	}
	return nil
}

// UpdateCounters writes the interruption and pomodoro counters.
func (r *FocusRepo) UpdateCounters(ctx context.Context, s model.FocusSession) error {
	const q = `UPDATE focus_sessions SET interrupted = ?, interruption_count = ?, pomodoro_count = ? WHERE id = ?`
	if err := execOne(ctx, r.db.SQL, r.db.q(q),
		boolInt(s.Interrupted), s.InterruptionCount, s.PomodoroCount, s.ID,
	); err != nil {
		return fmt.Errorf("update focus counters %s: %w", s.ID, err)
	}
	return nil
}

// SetTask rewrites the weak task reference; an empty taskID clears it.
func (r *FocusRepo) SetTask(ctx context.Context, id, taskID string) error {
	const q = `UPDATE focus_sessions SET task_id = ? WHERE id = ?`
	if err := execOne(ctx, r.db.SQL, r.db.q(q), nullString(taskID), id); err != nil {
		return fmt.Errorf("set focus task %s: %w", id, err)
	}
	return nil
}

// Delete removes a session and any active pointer naming it.
func (r *FocusRepo) Delete(ctx context.Context, id string) error {
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := execOne(ctx, tx, r.db.q(`DELETE FROM focus_sessions WHERE id = ?`), id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, r.db.q(`DELETE FROM active_sessions WHERE session_id = ?`), id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete focus session %s: %w", id, err)
	}
	return nil
}

// Get loads one session.
func (r *FocusRepo) Get(ctx context.Context, id string) (*model.FocusSession, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.q(`SELECT `+focusColumns+` FROM focus_sessions WHERE id = ?`), id)
	s, err := scanFocus(row)
	if err != nil {
		return nil, fmt.Errorf("get focus session %s: %w", id, notFound(err))
	}
	return s, nil
}

// Active follows the active pointer. A pointer to a vanished row reads as no session.
func (r *FocusRepo) Active(ctx context.Context) (*model.FocusSession, error) {
	const q = `SELECT ` + focusColumns + ` FROM focus_sessions
		WHERE id = (SELECT session_id FROM active_sessions WHERE kind = ?)`
	s, err := scanFocus(r.db.SQL.QueryRowContext(ctx, r.db.q(q), focusKind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active focus session: %w", err)
	}
	return s, nil
}

// ListRange returns sessions started in [from, to), newest first.
func (r *FocusRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.FocusSession, error) {
	const q = `SELECT ` + focusColumns + ` FROM focus_sessions
		WHERE start_time >= ? AND start_time < ? ORDER BY start_time DESC`
	rows, err := r.db.SQL.QueryContext(ctx, r.db.q(q), formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("list focus sessions: %w", err)
	}
	defer rows.Close()

	var out []model.FocusSession
	for rows.Next() {
		s, err := scanFocus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Stats aggregates sessions started in [from, to). Only completed sessions count
// towards total seconds.
func (r *FocusRepo) Stats(ctx context.Context, from, to time.Time) (model.FocusStats, error) {
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(completed), 0),
       COALESCE(SUM(CASE WHEN completed = 1 THEN duration ELSE 0 END), 0),
       COALESCE(SUM(interruption_count), 0),
       COALESCE(SUM(pomodoro_count), 0)
FROM focus_sessions
WHERE start_time >= ? AND start_time < ?`
	var st model.FocusStats
	var sessions, completed int64
	err := r.db.SQL.QueryRowContext(ctx, r.db.q(q), formatTime(from), formatTime(to)).
		Scan(&sessions, &completed, &st.TotalSeconds, &st.Interruptions, &st.Pomodoros)
	if err != nil {
		return model.FocusStats{}, fmt.Errorf("focus stats: %w", err)
	}
	st.Sessions, st.CompletedSessions = int(sessions), int(completed)
	return st, nil
}

func scanFocus(s scanner) (*model.FocusSession, error) {
	var (
		f                      model.FocusSession
		taskID, endTime        sql.NullString
		startTime              string
		completed, interrupted int
	)
	if err := s.Scan(&f.ID, &f.Duration, &f.BreakDuration, &taskID, &startTime, &endTime,
		&completed, &interrupted, &f.InterruptionCount, &f.PomodoroCount); err != nil {
		return nil, err
	}
	f.TaskID = taskID.String
	f.Completed = completed == 1
	f.Interrupted = interrupted == 1

	var err error
	if f.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if f.EndTime, err = parseNullTime(endTime); err != nil {
		return nil, err
	}
	return &f, nil
}
