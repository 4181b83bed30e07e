package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/wellnest/wellnest/internal/errs"
	"github.com/wellnest/wellnest/internal/model"
	"github.com/wellnest/wellnest/internal/repository"
)

// TaskService owns the task collection.
type TaskService interface {
	Load(ctx context.Context) error
	// Tasks returns the collection ordered by creation time, newest first.
	Tasks() []model.Task
	Get(id string) (model.Task, error)
	Add(ctx context.Context, in model.TaskInput) (model.Task, error)
	Update(ctx context.Context, id string, p model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	ToggleComplete(ctx context.Context, id string, completed bool) (model.Task, error)
	// Filtered is a pure derived view of the collection.
	Filtered(filter model.TaskFilter, order model.TaskSort) []model.Task
	Categories() []string
	Overdue(now time.Time) []model.Task
	Lookup(id string) (model.Task, bool)
}

type TaskServiceImpl struct {
	repo repository.TaskRepository
	rep  *Reporter
	log  *zap.Logger
	tag  language.Tag
	now  func() time.Time

	mu    sync.RWMutex
	tasks []model.Task
}

// NewTaskService constructs TaskService. tag selects the collation used by the
// alphabetical view.
func NewTaskService(repo repository.TaskRepository, rep *Reporter, log *zap.Logger, tag language.Tag) *TaskServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskServiceImpl{repo: repo, rep: rep, log: log, tag: tag, now: time.Now}
}

// Load replaces the collection with what the repository holds.
func (s *TaskServiceImpl) Load(ctx context.Context) error {
	list, err := s.repo.List(ctx)
	if err != nil {
		return s.rep.Report(ctx, "tasks.load", err)
	}
	s.mu.Lock()
	s.tasks = list
	s.mu.Unlock()
	s.log.Debug("tasks loaded", zap.Int("count", len(list)))
	return nil
}

func (s *TaskServiceImpl) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *TaskServiceImpl) Get(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.tasks[i], nil
	}
	return model.Task{}, errs.ErrNotFound
}

// Lookup resolves weak task references held by focus sessions.
func (s *TaskServiceImpl) Lookup(id string) (model.Task, bool) {
	t, err := s.Get(id)
	return t, err == nil
}

// Add persists a new task and prepends it to the collection.
func (s *TaskServiceImpl) Add(ctx context.Context, in model.TaskInput) (model.Task, error) {
	const op = "tasks.add"
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, s.rep.Report(ctx, op, errs.Validation("task title is empty"))
	}
	prio := in.Priority
	if prio == "" {
		prio = model.PriorityMedium
	}
	if !prio.Valid() {
		return model.Task{}, s.rep.Report(ctx, op, errs.Validation("unknown priority %q", prio))
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = model.DefaultCategory
	}
	id, err := newID()
	if err != nil {
		return model.Task{}, s.rep.Report(ctx, op, err)
	}
	now := s.now()
	t := model.Task{
		ID:          id,
		Title:       title,
		Description: in.Description,
		Priority:    prio,
		DueDate:     in.DueDate,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Insert(ctx, t); err != nil {
		return model.Task{}, s.rep.Report(ctx, op, err)
	}
	s.tasks = append([]model.Task{t}, s.tasks...)
	return t, nil
}

// Update merges p into the task. Completed goes through the same rule as ToggleComplete.
func (s *TaskServiceImpl) Update(ctx context.Context, id string, p model.TaskPatch) (model.Task, error) {
	const op = "tasks.update"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, s.rep.Report(ctx, op, errs.ErrNotFound)
	}
	next := s.tasks[i]
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return model.Task{}, s.rep.Report(ctx, op, errs.Validation("task title is empty"))
		}
		next.Title = title
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return model.Task{}, s.rep.Report(ctx, op, errs.Validation("unknown priority %q", *p.Priority))
		}
		next.Priority = *p.Priority
	}
	switch {
	case p.ClearDue:
		next.DueDate = nil
	case p.DueDate != nil:
		due := *p.DueDate
		next.DueDate = &due
	}
	if p.Category != nil {
		next.Category = strings.TrimSpace(*p.Category)
		if next.Category == "" {
			next.Category = model.DefaultCategory
		}
	}
	now := s.now()
	if p.Completed != nil {
		next = setCompleted(next, *p.Completed, now)
	}
	next.UpdatedAt = laterOf(next.UpdatedAt, now)
	return s.write(ctx, op, i, next)
}

// ToggleComplete sets completion. completedAt is stamped only on a false to true transition.
func (s *TaskServiceImpl) ToggleComplete(ctx context.Context, id string, completed bool) (model.Task, error) {
	const op = "tasks.toggleComplete"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, s.rep.Report(ctx, op, errs.ErrNotFound)
	}
	now := s.now()
	next := setCompleted(s.tasks[i], completed, now)
	next.UpdatedAt = laterOf(next.UpdatedAt, now)
	return s.write(ctx, op, i, next)
}

func setCompleted(t model.Task, completed bool, now time.Time) model.Task {
	switch {
	case completed && !t.Completed:
		at := now
		t.CompletedAt = &at
	case !completed:
		t.CompletedAt = nil
	}
	t.Completed = completed
	return t
}

// write persists next and replaces slot i. Caller holds s.mu.
func (s *TaskServiceImpl) write(ctx context.Context, op string, i int, next model.Task) (model.Task, error) {
	if err := s.repo.Update(ctx, next); err != nil {
		return model.Task{}, s.rep.Report(ctx, op, err)
	}
	s.tasks[i] = next
	return next, nil
}

// Delete removes the task. Focus sessions referencing it are left alone.
func (s *TaskServiceImpl) Delete(ctx context.Context, id string) (bool, error) {
	const op = "tasks.delete"
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
			return false, nil
		}
		return false, s.rep.Report(ctx, op, err)
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return true, nil
}

// Filtered returns a fresh slice; the collection itself is never reordered.
func (s *TaskServiceImpl) Filtered(filter model.TaskFilter, order model.TaskSort) []model.Task {
	s.mu.RLock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		switch filter {
		case model.FilterActive:
			if t.Completed {
				continue
			}
		case model.FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	s.mu.RUnlock()

	switch order {
	case model.SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	case model.SortAlphabetical:
		c := collate.New(s.tag, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Title, out[j].Title) < 0
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// Categories returns the distinct categories in collation order.
func (s *TaskServiceImpl) Categories() []string {
	s.mu.RLock()
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.tasks {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	s.mu.RUnlock()
	collate.New(s.tag).SortStrings(out)
	return out
}

// Overdue returns open tasks whose due date is before the start of now's day.
func (s *TaskServiceImpl) Overdue(now time.Time) []model.Task {
	today := model.StartOfDay(now)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Task
	for _, t := range s.tasks {
		if !t.Completed && t.DueDate != nil && t.DueDate.Before(today) {
			out = append(out, t)
		}
	}
	return out
}

func (s *TaskServiceImpl) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
