package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wellnest/wellnest/internal/model"
)

// MeditationRepo implements repository.MeditationRepository.
type MeditationRepo struct{ db *DB }

// NewMeditationRepo constructs a meditation session repository.
func NewMeditationRepo(db *DB) *MeditationRepo { return &MeditationRepo{db: db} }

const meditationColumns = `id, start_time, end_time, duration, completed, total_paused_time, sound_theme,
	notes, rating, target_duration, maintains_streak`

// Insert stores a finalized session.
func (r *MeditationRepo) Insert(ctx context.Context, s model.MeditationSession) error {
	const q = `INSERT INTO meditation_sessions (` + meditationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.SQL.ExecContext(ctx, r.db.q(q),
		s.ID, formatTime(s.StartTime), formatTimePtr(s.EndTime), s.Duration, boolInt(s.Completed),
		s.TotalPausedTime, s.SoundTheme, s.Notes, s.Rating, s.TargetDuration, boolInt(s.MaintainsStreak),
	)
	if err != nil {
		return fmt.Errorf("insert meditation session: %w", err)
	}
	return nil
}

// UpdateNotes edits the user-editable columns of a finalized session.
func (r *MeditationRepo) UpdateNotes(ctx context.Context, id, notes string, rating int) error {
	const q = `UPDATE meditation_sessions SET notes = ?, rating = ? WHERE id = ?`
	if err := execOne(ctx, r.db.SQL, r.db.q(q), notes, rating, id); err != nil {
		return fmt.Errorf("update meditation session %s: %w", id, err)
	}
	return nil
}

// Delete removes a session.
func (r *MeditationRepo) Delete(ctx context.Context, id string) error {
	if err := execOne(ctx, r.db.SQL, r.db.q(`DELETE FROM meditation_sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete meditation session %s: %w", id, err)
	}
	return nil
}

// Get loads one session.
func (r *MeditationRepo) Get(ctx context.Context, id string) (*model.MeditationSession, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.q(`SELECT `+meditationColumns+` FROM meditation_sessions WHERE id = ?`), id)
	s, err := scanMeditation(row)
	if err != nil {
		return nil, fmt.Errorf("get meditation session %s: %w", id, notFound(err))
	}
	return s, nil
}

// List returns the full history, newest first.
func (r *MeditationRepo) List(ctx context.Context) ([]model.MeditationSession, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `SELECT `+meditationColumns+` FROM meditation_sessions ORDER BY start_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("list meditation sessions: %w", err)
	}
	defer rows.Close()

	var out []model.MeditationSession
	for rows.Next() {
		s, err := scanMeditation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanMeditation(s scanner) (*model.MeditationSession, error) {
	var (
		m                   model.MeditationSession
		startTime           string
		endTime             sql.NullString
		completed, maintain int
	)
	if err := s.Scan(&m.ID, &startTime, &endTime, &m.Duration, &completed, &m.TotalPausedTime,
		&m.SoundTheme, &m.Notes, &m.Rating, &m.TargetDuration, &maintain); err != nil {
		return nil, err
	}
	m.Completed = completed == 1
	m.MaintainsStreak = maintain == 1

	var err error
	if m.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if m.EndTime, err = parseNullTime(endTime); err != nil {
		return nil, err
	}
	return &m, nil
}
