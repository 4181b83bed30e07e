// Package repository defines the persistence contracts consumed by the stores.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wellnest/wellnest/internal/model"
)

// KVStore holds opaque JSON values by string key.
type KVStore interface {
	// Get returns the stored JSON or nil when the key is absent.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// Set marshals value and stores it under key.
	Set(ctx context.Context, key string, value any) error
	// Remove deletes key; removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// TaskRepository persists tasks.
type TaskRepository interface {
	Insert(ctx context.Context, t model.Task) error
	// Update overwrites the mutable columns of an existing task.
	Update(ctx context.Context, t model.Task) error
	// Delete returns errs.ErrNotFound when no row matched.
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Task, error)
	// List returns all tasks ordered by created_at DESC.
	List(ctx context.Context) ([]model.Task, error)
}

// FocusRepository persists focus sessions and the active-session pointer.
type FocusRepository interface {
	// Start inserts s and marks it active in one transaction.
	Start(ctx context.Context, s model.FocusSession) error
	// Complete writes the completion delta and clears the active pointer if it names s.
	Complete(ctx context.Context, s model.FocusSession) error
	// UpdateCounters writes interruption/pomodoro counters.
	UpdateCounters(ctx context.Context, s model.FocusSession) error
	// SetTask rewrites the weak task reference.
	SetTask(ctx context.Context, id, taskID string) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.FocusSession, error)
	// Active returns the session named by the active pointer, or nil.
	Active(ctx context.Context) (*model.FocusSession, error)
	// ListRange returns sessions with start_time in [from, to), newest first.
	ListRange(ctx context.Context, from, to time.Time) ([]model.FocusSession, error)
	// Stats aggregates sessions with start_time in [from, to).
	Stats(ctx context.Context, from, to time.Time) (model.FocusStats, error)
}

// MeditationRepository persists finalized meditation sessions.
type MeditationRepository interface {
	Insert(ctx context.Context, s model.MeditationSession) error
	// UpdateNotes writes notes and rating.
	UpdateNotes(ctx context.Context, id, notes string, rating int) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.MeditationSession, error)
	// List returns the full history ordered by start_time DESC.
	List(ctx context.Context) ([]model.MeditationSession, error)
}

// JournalRepository persists journal entries.
type JournalRepository interface {
	Insert(ctx context.Context, e model.JournalEntry) error
	Update(ctx context.Context, e model.JournalEntry) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.JournalEntry, error)
	// ListRange returns entries with timestamp in [from, to), newest first.
	ListRange(ctx context.Context, from, to time.Time) ([]model.JournalEntry, error)
	// Search matches term case-insensitively against content, newest first.
	Search(ctx context.Context, term string) ([]model.JournalEntry, error)
	ListByMood(ctx context.Context, mood model.Mood) ([]model.JournalEntry, error)
	// MoodCounts counts entries per mood with timestamp in [from, to).
	MoodCounts(ctx context.Context, from, to time.Time) (map[model.Mood]int, error)
}

// ErrorLogRepository is the append-only durable error log.
type ErrorLogRepository interface {
	Append(ctx context.Context, r model.ErrorRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]model.ErrorRecord, error)
}
