package model

import "time"

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool { return p.Rank() < 3 }

// DefaultCategory is assigned to tasks created without one.
const DefaultCategory = "default"

// Task is a to-do item. CompletedAt is non-nil iff Completed.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	DueDate     *time.Time
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// TaskInput is the caller-supplied part of a new task.
type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
	Category    string
}

// TaskPatch is a partial task update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *time.Time
	ClearDue    bool
	Category    *string
	Completed   *bool
}

// TaskFilter selects which tasks a derived view includes.
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterActive    TaskFilter = "active"
	FilterCompleted TaskFilter = "completed"
)

// TaskSort orders a derived view.
type TaskSort string

const (
	SortDate         TaskSort = "date"
	SortPriority     TaskSort = "priority"
	SortAlphabetical TaskSort = "alphabetical"
)
