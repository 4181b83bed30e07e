package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/wellnest/wellnest/internal/model"
)

// JournalRepo implements repository.JournalRepository.
type JournalRepo struct{ db *DB }

// NewJournalRepo constructs a journal repository.
func NewJournalRepo(db *DB) *JournalRepo { return &JournalRepo{db: db} }

const journalColumns = `id, content, mood, tags, timestamp, weather, location, template_id, created_at, updated_at`

// Insert adds an entry.
func (r *JournalRepo) Insert(ctx context.Context, e model.JournalEntry) error {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}
	const q = `INSERT INTO journal_entries (` + journalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.SQL.ExecContext(ctx, r.db.q(q),
		e.ID, e.Content, string(e.Mood), tags, formatTime(e.Timestamp), e.Weather, e.Location,
		e.TemplateID, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of e.ID.
func (r *JournalRepo) Update(ctx context.Context, e model.JournalEntry) error {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}
	const q = `UPDATE journal_entries SET content = ?, mood = ?, tags = ?, weather = ?, location = ?,
		template_id = ?, updated_at = ? WHERE id = ?`
	if err := execOne(ctx, r.db.SQL, r.db.q(q),
		e.Content, string(e.Mood), tags, e.Weather, e.Location, e.TemplateID, formatTime(e.UpdatedAt), e.ID,
	); err != nil {
		return fmt.Errorf("update journal entry %s: %w", e.ID, err)
	}
	return nil
}

// Delete removes an entry.
func (r *JournalRepo) Delete(ctx context.Context, id string) error {
	if err := execOne(ctx, r.db.SQL, r.db.q(`DELETE FROM journal_entries WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete journal entry %s: %w", id, err)
	}
	return nil
}

// Get loads one entry.
func (r *JournalRepo) Get(ctx context.Context, id string) (*model.JournalEntry, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.q(`SELECT `+journalColumns+` FROM journal_entries WHERE id = ?`), id)
	e, err := scanJournal(row)
	if err != nil {
		return nil, fmt.Errorf("get journal entry %s: %w", id, notFound(err))
	}
	return e, nil
}

// ListRange returns entries with timestamp in [from, to), newest first.
func (r *JournalRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.JournalEntry, error) {
	const q = `SELECT ` + journalColumns + ` FROM journal_entries
		WHERE timestamp >= ? AND timestamp < ? ORDER BY timestamp DESC`
	return r.list(ctx, "list journal entries", q, formatTime(from), formatTime(to))
}

// Search matches term as a case-insensitive substring of content. Both sides
// are case folded in Go; SQL LOWER only folds ASCII on sqlite.
func (r *JournalRepo) Search(ctx context.Context, term string) ([]model.JournalEntry, error) {
	const q = `SELECT ` + journalColumns + ` FROM journal_entries ORDER BY timestamp DESC`
	all, err := r.list(ctx, "search journal entries", q)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(term)
	var out []model.JournalEntry
	for _, e := range all {
		if strings.Contains(fold.String(e.Content), needle) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByMood returns entries tagged with mood, newest first.
func (r *JournalRepo) ListByMood(ctx context.Context, mood model.Mood) ([]model.JournalEntry, error) {
	const q = `SELECT ` + journalColumns + ` FROM journal_entries WHERE mood = ? ORDER BY timestamp DESC`
	return r.list(ctx, "list journal entries by mood", q, string(mood))
}

// MoodCounts counts entries per non-empty mood with timestamp in [from, to).
func (r *JournalRepo) MoodCounts(ctx context.Context, from, to time.Time) (map[model.Mood]int, error) {
	const q = `SELECT mood, COUNT(*) FROM journal_entries
		WHERE mood <> '' AND timestamp >= ? AND timestamp < ? GROUP BY mood`
	rows, err := r.db.SQL.QueryContext(ctx, r.db.q(q), formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("journal mood counts: %w", err)
	}
	defer rows.Close()

	out := make(map[model.Mood]int)
	for rows.Next() {
		var (
			mood string
			n    int64
		)
		if err := rows.Scan(&mood, &n); err != nil {
			return nil, err
		}
		out[model.Mood(mood)] = int(n)
	}
	return out, rows.Err()
}

func (r *JournalRepo) list(ctx context.Context, op, query string, args ...any) ([]model.JournalEntry, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []model.JournalEntry
	for rows.Next() {
		e, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func scanJournal(s scanner) (*model.JournalEntry, error) {
	var (
		e                               model.JournalEntry
		mood, tags                      string
		timestamp, createdAt, updatedAt string
	)
	if err := s.Scan(&e.ID, &e.Content, &mood, &tags, &timestamp, &e.Weather, &e.Location,
		&e.TemplateID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Mood = model.Mood(mood)
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %s: %w", e.ID, err)
	}

	var err error
	if e.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
