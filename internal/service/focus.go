package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wellnest/wellnest/internal/errs"
	"github.com/wellnest/wellnest/internal/model"
	"github.com/wellnest/wellnest/internal/repository"
)

// FocusService owns today's focus sessions and the single active session.
type FocusService interface {
	Load(ctx context.Context) error
	Start(ctx context.Context, in model.FocusInput) (model.FocusSession, error)
	Complete(ctx context.Context, id string, o model.FocusOverrides) (model.FocusSession, error)
	// AddInterruption returns ok=false when no session is active.
	AddInterruption(ctx context.Context) (count int, ok bool, err error)
	IncrementPomodoro(ctx context.Context) (count int, ok bool, err error)
	// Statistics aggregates persisted sessions started in [start, end).
	Statistics(ctx context.Context, start, end time.Time) (model.FocusStats, error)
	Active() *model.FocusSession
	Sessions() []model.FocusSession
	Update(ctx context.Context, id string, p model.FocusPatch) (model.FocusSession, error)
	Delete(ctx context.Context, id string) (bool, error)
	NextPhase() model.FocusPhase
}

type FocusServiceImpl struct {
	repo     repository.FocusRepository
	settings SettingsReader
	rep      *Reporter
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location

	mu       sync.Mutex
	active   *model.FocusSession
	sessions []model.FocusSession
}

// NewFocusService constructs FocusService. settings may be nil, in which case
// defaults are used for session durations. Today's window is taken in loc;
// nil means time.Local.
func NewFocusService(repo repository.FocusRepository, settings SettingsReader, rep *Reporter,
	log *zap.Logger, loc *time.Location) *FocusServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &FocusServiceImpl{repo: repo, settings: settings, rep: rep, log: log, now: time.Now, loc: loc}
}

func (s *FocusServiceImpl) currentSettings() model.Settings {
	if s.settings == nil {
		return model.DefaultSettings()
	}
	return s.settings.Current()
}

// Load reads today's sessions and follows the persisted active pointer.
func (s *FocusServiceImpl) Load(ctx context.Context) error {
	const op = "focus.load"
	day := model.DayRange(s.now().In(s.loc))
	list, err := s.repo.ListRange(ctx, day.Start, day.End)
	if err != nil {
		return s.rep.Report(ctx, op, err)
	}
	active, err := s.repo.Active(ctx)
	if err != nil {
		return s.rep.Report(ctx, op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = list
	s.active = active
	if active != nil && indexFocus(list, active.ID) < 0 {
		// started before midnight and still running
		s.sessions = append([]model.FocusSession{*active}, s.sessions...)
	}
	s.log.Debug("focus sessions loaded", zap.Int("count", len(s.sessions)), zap.Bool("active", active != nil))
	return nil
}

// Start persists a new active session. A second start while one is running fails
// with errs.ErrConflict and leaves the first session in place.
func (s *FocusServiceImpl) Start(ctx context.Context, in model.FocusInput) (model.FocusSession, error) {
	const op = "focus.start"
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return model.FocusSession{}, s.rep.Report(ctx, op, errs.ErrConflict)
	}
	if in.Duration < 0 || in.BreakDuration < 0 {
		return model.FocusSession{}, s.rep.Report(ctx, op, errs.Validation("negative focus duration"))
	}
	st := s.currentSettings()
	if in.Duration == 0 {
		in.Duration = st.FocusDuration * 60
	}
	if in.BreakDuration == 0 {
		in.BreakDuration = st.BreakDuration * 60
	}
	id, err := newID()
	if err != nil {
		return model.FocusSession{}, s.rep.Report(ctx, op, err)
	}
	sess := model.FocusSession{
		ID:            id,
		Duration:      in.Duration,
		BreakDuration: in.BreakDuration,
		TaskID:        in.TaskID,
		StartTime:     s.now(),
		PomodoroCount: 1,
	}
	if err := s.repo.Start(ctx, sess); err != nil {
		return model.FocusSession{}, s.rep.Report(ctx, op, err)
	}
	s.sessions = append([]model.FocusSession{sess}, s.sessions...)
	active := sess
	s.active = &active
	return sess, nil
}

// Complete finalizes a session. Completing an already completed session returns it as is.
func (s *FocusServiceImpl) Complete(ctx context.Context, id string, o model.FocusOverrides) (model.FocusSession, error) {
	const op = "focus.complete"
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.find(ctx, id)
	if err != nil {
		return model.FocusSession{}, s.rep.Report(ctx, op, err)
	}
	if cur.Completed {
		return cur, nil
	}

	next := cur
	end := s.now()
	if o.EndTime != nil {
		end = *o.EndTime
	}
	if end.Before(next.StartTime) {
		return model.FocusSession{}, s.rep.Report(ctx, op, errs.Validation("end time before start time"))
	}
	next.EndTime = &end
	next.Completed = true
	if o.InterruptionCount != nil {
		if *o.InterruptionCount < 0 {
			return model.FocusSession{}, s.rep.Report(ctx, op, errs.Validation("negative interruption count"))
		}
		next.InterruptionCount = *o.InterruptionCount
		next.Interrupted = next.InterruptionCount > 0
	}
	if o.PomodoroCount != nil {
		if *o.PomodoroCount < 1 {
			return model.FocusSession{}, s.rep.Report(ctx, op, errs.Validation("pomodoro count below 1"))
		}
		next.PomodoroCount = *o.PomodoroCount
	}

	if err := s.repo.Complete(ctx, next); err != nil {
		return model.FocusSession{}, s.rep.Report(ctx, op, err)
	}
	s.replace(next)
	if s.active != nil && s.active.ID == id {
		s.active = nil
	}
	return next, nil
}

func (s *FocusServiceImpl) AddInterruption(ctx context.Context) (int, bool, error) {
	return s.bump(ctx, "focus.addInterruption", func(f *model.FocusSession) int {
		f.InterruptionCount++
		f.Interrupted = true
		return f.InterruptionCount
	})
}

func (s *FocusServiceImpl) IncrementPomodoro(ctx context.Context) (int, bool, error) {
	return s.bump(ctx, "focus.incrementPomodoro", func(f *model.FocusSession) int {
		f.PomodoroCount++
		return f.PomodoroCount
	})
}

// bump applies fn to a copy of the active session, persists the counters and commits.
func (s *FocusServiceImpl) bump(ctx context.Context, op string, fn func(*model.FocusSession) int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return 0, false, nil
	}
	next := *s.active
	n := fn(&next)
	if err := s.repo.UpdateCounters(ctx, next); err != nil {
		return 0, false, s.rep.Report(ctx, op, err)
	}
	s.active = &next
	s.replace(next)
	return n, true, nil
}

// Statistics queries the repository; the in-memory window only covers today.
func (s *FocusServiceImpl) Statistics(ctx context.Context, start, end time.Time) (model.FocusStats, error) {
	if end.Before(start) {
		return model.FocusStats{}, s.rep.Report(ctx, "focus.statistics", errs.Validation("range end before start"))
	}
	st, err := s.repo.Stats(ctx, start, end)
	if err != nil {
		return model.FocusStats{}, s.rep.Report(ctx, "focus.statistics", err)
	}
	return st, nil
}

func (s *FocusServiceImpl) Active() *model.FocusSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	a := *s.active
	return &a
}

func (s *FocusServiceImpl) Sessions() []model.FocusSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FocusSession(nil), s.sessions...)
}

// Update rewrites the task reference of a session.
func (s *FocusServiceImpl) Update(ctx context.Context, id string, p model.FocusPatch) (model.FocusSession, error) {
	const op = "focus.update"
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.find(ctx, id)
	if err != nil {
		return model.FocusSession{}, s.rep.Report(ctx, op, err)
	}
	if p.TaskID == nil {
		return cur, nil
	}
	next := cur
	next.TaskID = *p.TaskID
	if err := s.repo.SetTask(ctx, id, next.TaskID); err != nil {
		return model.FocusSession{}, s.rep.Report(ctx, op, err)
	}
	s.replace(next)
	if s.active != nil && s.active.ID == id {
		s.active = &next
	}
	return next, nil
}

// Delete removes a session; deleting the active one also releases the active slot.
func (s *FocusServiceImpl) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, s.rep.Report(ctx, "focus.delete", err)
	}
	if i := indexFocus(s.sessions, id); i >= 0 {
		s.sessions = append(s.sessions[:i:i], s.sessions[i+1:]...)
	}
	if s.active != nil && s.active.ID == id {
		s.active = nil
	}
	return true, nil
}

// NextPhase reports what follows the current pomodoro of the active session:
// a long break every PomodorosUntilLongBreak pomodoros, a short break otherwise.
func (s *FocusServiceImpl) NextPhase() model.FocusPhase {
	s.mu.Lock()
	active := s.active
	var n int
	if active != nil {
		n = active.PomodoroCount
	}
	s.mu.Unlock()

	if active == nil {
		return model.PhaseFocus
	}
	every := s.currentSettings().PomodorosUntilLongBreak
	if every > 0 && n%every == 0 {
		return model.PhaseLongBreak
	}
	return model.PhaseBreak
}

// ResolveTask follows the weak task reference. A dangling or empty reference yields ok=false.
func ResolveTask(sess model.FocusSession, tasks TaskLookup) (model.Task, bool) {
	if sess.TaskID == "" || tasks == nil {
		return model.Task{}, false
	}
	return tasks.Lookup(sess.TaskID)
}

// find returns a session from memory or, outside today's window, from the repository.
// Caller holds s.mu.
func (s *FocusServiceImpl) find(ctx context.Context, id string) (model.FocusSession, error) {
	if s.active != nil && s.active.ID == id {
		return *s.active, nil
	}
	if i := indexFocus(s.sessions, id); i >= 0 {
		return s.sessions[i], nil
	}
	got, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.FocusSession{}, err
	}
	return *got, nil
}

// replace swaps the in-window copy of next, if any. Caller holds s.mu.
func (s *FocusServiceImpl) replace(next model.FocusSession) {
	if i := indexFocus(s.sessions, next.ID); i >= 0 {
		s.sessions[i] = next
	}
}

func indexFocus(list []model.FocusSession, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
