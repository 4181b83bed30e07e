package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wellnest/wellnest/internal/model"
)

// TaskRepo implements repository.TaskRepository.
type TaskRepo struct{ db *DB }

// NewTaskRepo constructs a task repository.
func NewTaskRepo(db *DB) *TaskRepo { return &TaskRepo{db: db} }

const taskColumns = `id, title, description, completed, priority, due_date, category, created_at, updated_at, completed_at`

// Insert adds a new task row.
func (r *TaskRepo) Insert(ctx context.Context, t model.Task) error {
	const q = `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.SQL.ExecContext(ctx, r.db.q(q),
		t.ID, t.Title, t.Description, boolInt(t.Completed), string(t.Priority),
		formatTimePtr(t.DueDate), t.Category, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
		formatTimePtr(t.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update overwrites all mutable columns of task t.ID.
func (r *TaskRepo) Update(ctx context.Context, t model.Task) error {
	const q = `UPDATE tasks SET title = ?, description = ?, completed = ?, priority = ?, due_date = ?,
		category = ?, updated_at = ?, completed_at = ? WHERE id = ?`
	err := execOne(ctx, r.db.SQL, r.db.q(q),
		t.Title, t.Description, boolInt(t.Completed), string(t.Priority), formatTimePtr(t.DueDate),
		t.Category, formatTime(t.UpdatedAt), formatTimePtr(t.CompletedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes a task. Focus sessions referencing it are left alone.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	if err := execOne(ctx, r.db.SQL, r.db.q(`DELETE FROM tasks WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// Get loads a single task.
func (r *TaskRepo) Get(ctx context.Context, id string) (*model.Task, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.q(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, notFound(err))
	}
	return t, nil
}

// List returns every task, newest first.
func (r *TaskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTask(s scanner) (*model.Task, error) {
	var (
		t                    model.Task
		completed            int
		priority             string
		createdAt, updatedAt string
		dueDate, completedAt sql.NullString
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &completed, &priority, &dueDate,
		&t.Category, &createdAt, &updatedAt, &completedAt); err != nil {
		return nil, err
	}
	t.Completed = completed == 1
	t.Priority = model.Priority(priority)

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if t.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
