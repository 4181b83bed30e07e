package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/wellnest/wellnest/internal/errs"
	"github.com/wellnest/wellnest/internal/model"
	"github.com/wellnest/wellnest/internal/repository"
)

var errDisk = errorString("disk I/O error")

type errorString string

func (e errorString) Error() string { return string(e) }

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func newClock() *clock { return &clock{t: time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)} }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeKV struct {
	mu        sync.Mutex
	data      map[string]json.RawMessage
	getErr    error
	setErr    error
	removeErr error
	sets      int
}

var _ repository.KVStore = (*fakeKV)(nil)

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]json.RawMessage{}} }

func (f *fakeKV) Get(_ context.Context, key string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.data[key], nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.sets++
	f.data[key] = b
	return nil
}

func (f *fakeKV) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.data, key)
	return nil
}

type fakeTaskRepo struct {
	rows      map[string]model.Task
	insertErr error
	updateErr error
	deleteErr error
}

var _ repository.TaskRepository = (*fakeTaskRepo)(nil)

func newFakeTaskRepo() *fakeTaskRepo { return &fakeTaskRepo{rows: map[string]model.Task{}} }

func (f *fakeTaskRepo) Insert(_ context.Context, t model.Task) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows[t.ID] = t
	return nil
}

func (f *fakeTaskRepo) Update(_ context.Context, t model.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[t.ID]; !ok {
		return errs.ErrNotFound
	}
	f.rows[t.ID] = t
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeTaskRepo) Get(_ context.Context, id string) (*model.Task, error) {
	t, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTaskRepo) List(context.Context) ([]model.Task, error) {
	out := make([]model.Task, 0, len(f.rows))
	for _, t := range f.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeFocusRepo struct {
	rows        map[string]model.FocusSession
	activeID    string
	startErr    error
	completeErr error
	counterErr  error

	statsFrom, statsTo time.Time
	statsOut           model.FocusStats
}

var _ repository.FocusRepository = (*fakeFocusRepo)(nil)

func newFakeFocusRepo() *fakeFocusRepo { return &fakeFocusRepo{rows: map[string]model.FocusSession{}} }

func (f *fakeFocusRepo) Start(_ context.Context, s model.FocusSession) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.rows[s.ID] = s
	f.activeID = s.ID
	return nil
}

func (f *fakeFocusRepo) Complete(_ context.Context, s model.FocusSession) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	cur, ok := f.rows[s.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.EndTime, cur.Completed = s.EndTime, true
	cur.Interrupted, cur.InterruptionCount, cur.PomodoroCount = s.Interrupted, s.InterruptionCount, s.PomodoroCount
	f.rows[s.ID] = cur
	if f.activeID == s.ID {
		f.activeID = ""
	}
	return nil
}

func (f *fakeFocusRepo) UpdateCounters(_ context.Context, s model.FocusSession) error {
	if f.counterErr != nil {
		return f.counterErr
	}
	cur, ok := f.rows[s.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.Interrupted, cur.InterruptionCount, cur.PomodoroCount = s.Interrupted, s.InterruptionCount, s.PomodoroCount
	f.rows[s.ID] = cur
	return nil
}

func (f *fakeFocusRepo) SetTask(_ context.Context, id, taskID string) error {
	cur, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	cur.TaskID = taskID
	f.rows[id] = cur
	return nil
}

func (f *fakeFocusRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.rows, id)
	if f.activeID == id {
		f.activeID = ""
	}
	return nil
}

func (f *fakeFocusRepo) Get(_ context.Context, id string) (*model.FocusSession, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &s, nil
}

func (f *fakeFocusRepo) Active(context.Context) (*model.FocusSession, error) {
	if f.activeID == "" {
		return nil, nil
	}
	s := f.rows[f.activeID]
	return &s, nil
}

func (f *fakeFocusRepo) ListRange(_ context.Context, from, to time.Time) ([]model.FocusSession, error) {
	var out []model.FocusSession
	for _, s := range f.rows {
		if !s.StartTime.Before(from) && s.StartTime.Before(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (f *fakeFocusRepo) Stats(_ context.Context, from, to time.Time) (model.FocusStats, error) {
	f.statsFrom, f.statsTo = from, to
	return f.statsOut, nil
}

type fakeMeditationRepo struct {
	rows      map[string]model.MeditationSession
	insertErr error
}

var _ repository.MeditationRepository = (*fakeMeditationRepo)(nil)

func newFakeMeditationRepo() *fakeMeditationRepo {
	return &fakeMeditationRepo{rows: map[string]model.MeditationSession{}}
}

func (f *fakeMeditationRepo) Insert(_ context.Context, s model.MeditationSession) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows[s.ID] = s
	return nil
}

func (f *fakeMeditationRepo) UpdateNotes(_ context.Context, id, notes string, rating int) error {
	cur, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	cur.Notes, cur.Rating = notes, rating
	f.rows[id] = cur
	return nil
}

func (f *fakeMeditationRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeMeditationRepo) Get(_ context.Context, id string) (*model.MeditationSession, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &s, nil
}

func (f *fakeMeditationRepo) List(context.Context) ([]model.MeditationSession, error) {
	out := make([]model.MeditationSession, 0, len(f.rows))
	for _, s := range f.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

type fakeJournalRepo struct {
	rows        map[string]model.JournalEntry
	insertErr   error
	searchErr   error
	searchCalls int
}

var _ repository.JournalRepository = (*fakeJournalRepo)(nil)

func newFakeJournalRepo() *fakeJournalRepo { return &fakeJournalRepo{rows: map[string]model.JournalEntry{}} }

func (f *fakeJournalRepo) Insert(_ context.Context, e model.JournalEntry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows[e.ID] = e
	return nil
}

func (f *fakeJournalRepo) Update(_ context.Context, e model.JournalEntry) error {
	if _, ok := f.rows[e.ID]; !ok {
		return errs.ErrNotFound
	}
	f.rows[e.ID] = e
	return nil
}

func (f *fakeJournalRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeJournalRepo) Get(_ context.Context, id string) (*model.JournalEntry, error) {
	e, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &e, nil
}

func (f *fakeJournalRepo) ListRange(_ context.Context, from, to time.Time) ([]model.JournalEntry, error) {
	return f.filter(func(e model.JournalEntry) bool {
		return !e.Timestamp.Before(from) && e.Timestamp.Before(to)
	}), nil
}

func (f *fakeJournalRepo) Search(_ context.Context, term string) ([]model.JournalEntry, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	term = strings.ToLower(term)
	return f.filter(func(e model.JournalEntry) bool {
		return strings.Contains(strings.ToLower(e.Content), term)
	}), nil
}

func (f *fakeJournalRepo) ListByMood(_ context.Context, mood model.Mood) ([]model.JournalEntry, error) {
	return f.filter(func(e model.JournalEntry) bool { return e.Mood == mood }), nil
}

func (f *fakeJournalRepo) MoodCounts(_ context.Context, from, to time.Time) (map[model.Mood]int, error) {
	out := map[model.Mood]int{}
	for _, e := range f.rows {
		if e.Mood != "" && !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			out[e.Mood]++
		}
	}
	return out, nil
}

func (f *fakeJournalRepo) filter(keep func(model.JournalEntry) bool) []model.JournalEntry {
	var out []model.JournalEntry
	for _, e := range f.rows {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

type fakeErrorLog struct {
	records   []model.ErrorRecord
	appendErr error
}

var _ repository.ErrorLogRepository = (*fakeErrorLog)(nil)

func (f *fakeErrorLog) Append(_ context.Context, r model.ErrorRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeErrorLog) Recent(_ context.Context, limit int) ([]model.ErrorRecord, error) {
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], nil
}

type fakePresenter struct{ shown []model.Notification }

func (f *fakePresenter) Present(_ context.Context, n model.Notification) error {
	f.shown = append(f.shown, n)
	return nil
}

type staticSettings struct{ s model.Settings }

func (s staticSettings) Current() model.Settings { return s.s }

// newTestReporter returns a reporter wired to in-memory sinks.
func newTestReporter(t *testing.T) (*Reporter, *fakeErrorLog, *fakePresenter) {
	t.Helper()
	sink, pres := &fakeErrorLog{}, &fakePresenter{}
	return NewReporter(zaptest.NewLogger(t), sink, pres), sink, pres
}

var (
	_ SettingsService   = (*SettingsServiceImpl)(nil)
	_ TaskService       = (*TaskServiceImpl)(nil)
	_ FocusService      = (*FocusServiceImpl)(nil)
	_ MeditationService = (*MeditationServiceImpl)(nil)
	_ JournalService    = (*JournalServiceImpl)(nil)
	_ SettingsReader    = (*SettingsServiceImpl)(nil)
	_ TaskLookup        = (*TaskServiceImpl)(nil)
)
