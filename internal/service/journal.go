package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wellnest/wellnest/internal/errs"
	"github.com/wellnest/wellnest/internal/model"
	"github.com/wellnest/wellnest/internal/repository"
	"github.com/wellnest/wellnest/internal/streak"
)

// DefaultJournalWindow is how far back Load reads entries.
const DefaultJournalWindow = 30 * 24 * time.Hour

// JournalService owns a bounded window of recent entries and a separate
// search-results slot.
type JournalService interface {
	Load(ctx context.Context) error
	Entries() []model.JournalEntry
	SearchResults() []model.JournalEntry
	Add(ctx context.Context, in model.JournalInput) (model.JournalEntry, error)
	Update(ctx context.Context, id string, p model.JournalPatch) (model.JournalEntry, error)
	Delete(ctx context.Context, id string) (bool, error)
	// Search replaces the search results. A blank term clears them without a query.
	Search(ctx context.Context, term string) ([]model.JournalEntry, error)
	EntriesByDate(ctx context.Context, date time.Time) ([]model.JournalEntry, error)
	EntriesByMood(ctx context.Context, mood model.Mood) ([]model.JournalEntry, error)
	EntryForDate(ctx context.Context, date time.Time) (*model.JournalEntry, error)
	MoodCounts(ctx context.Context, start, end time.Time) (map[model.Mood]int, error)
	WritingStreak(now time.Time) streak.Result
}

type JournalServiceImpl struct {
	repo    repository.JournalRepository
	weather WeatherProvider
	rep     *Reporter
	log     *zap.Logger
	window  time.Duration
	loc     *time.Location
	now     func() time.Time

	mu      sync.Mutex
	entries []model.JournalEntry
	results []model.JournalEntry
}

// NewJournalService constructs JournalService. weather may be nil; a non-positive
// window falls back to DefaultJournalWindow.
func NewJournalService(repo repository.JournalRepository, weather WeatherProvider, rep *Reporter, log *zap.Logger,
	window time.Duration, loc *time.Location) *JournalServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	if window <= 0 {
		window = DefaultJournalWindow
	}
	if loc == nil {
		loc = time.Local
	}
	return &JournalServiceImpl{repo: repo, weather: weather, rep: rep, log: log, window: window, loc: loc, now: time.Now}
}

func (s *JournalServiceImpl) windowStart() time.Time {
	return model.StartOfDay(s.now().In(s.loc).Add(-s.window))
}

// Load reads the entries of the recent window. Older entries are reachable through
// the date, mood and search queries.
func (s *JournalServiceImpl) Load(ctx context.Context) error {
	from := s.windowStart()
	to := model.DayRange(s.now().In(s.loc)).End
	list, err := s.repo.ListRange(ctx, from, to)
	if err != nil {
		return s.rep.Report(ctx, "journal.load", err)
	}
	s.mu.Lock()
	s.entries = list
	s.mu.Unlock()
	s.log.Debug("journal window loaded", zap.Int("count", len(list)), zap.Time("from", from))
	return nil
}

func (s *JournalServiceImpl) Entries() []model.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.JournalEntry(nil), s.entries...)
}

func (s *JournalServiceImpl) SearchResults() []model.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.JournalEntry{}, s.results...)
}

// Add persists a new entry. Weather and location are filled from the weather
// provider when the caller left both empty and the provider answers.
func (s *JournalServiceImpl) Add(ctx context.Context, in model.JournalInput) (model.JournalEntry, error) {
	const op = "journal.add"
	if strings.TrimSpace(in.Content) == "" {
		return model.JournalEntry{}, s.rep.Report(ctx, op, errs.Validation("journal entry is empty"))
	}
	if !in.Mood.Valid() {
		return model.JournalEntry{}, s.rep.Report(ctx, op, errs.Validation("unknown mood %q", in.Mood))
	}
	id, err := newID()
	if err != nil {
		return model.JournalEntry{}, s.rep.Report(ctx, op, err)
	}
	now := s.now()
	e := model.JournalEntry{
		ID:         id,
		Content:    in.Content,
		Mood:       in.Mood,
		Tags:       normalizeTags(in.Tags),
		Timestamp:  in.Timestamp,
		Weather:    in.Weather,
		Location:   in.Location,
		TemplateID: in.TemplateID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if e.Weather == "" && e.Location == "" {
		s.fillWeather(ctx, &e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Insert(ctx, e); err != nil {
		return model.JournalEntry{}, s.rep.Report(ctx, op, err)
	}
	if !e.Timestamp.Before(s.windowStart()) {
		s.entries = insertByTimestamp(s.entries, e)
	}
	return e, nil
}

func (s *JournalServiceImpl) fillWeather(ctx context.Context, e *model.JournalEntry) {
	if s.weather == nil {
		return
	}
	w, err := s.weather.Current(ctx)
	if err != nil {
		s.log.Warn("journal: weather unavailable", zap.Error(err))
		return
	}
	e.Weather, e.Location = w.Condition, w.LocationName
}

// Update merges p into the entry and bumps UpdatedAt.
func (s *JournalServiceImpl) Update(ctx context.Context, id string, p model.JournalPatch) (model.JournalEntry, error) {
	const op = "journal.update"
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur model.JournalEntry
	if i := indexJournal(s.entries, id); i >= 0 {
		cur = s.entries[i]
	} else {
		got, err := s.repo.Get(ctx, id)
		if err != nil {
			return model.JournalEntry{}, s.rep.Report(ctx, op, err)
		}
		cur = *got
	}

	next := cur
	if p.Content != nil {
		if strings.TrimSpace(*p.Content) == "" {
			return model.JournalEntry{}, s.rep.Report(ctx, op, errs.Validation("journal entry is empty"))
		}
		next.Content = *p.Content
	}
	if p.Mood != nil {
		if !p.Mood.Valid() {
			return model.JournalEntry{}, s.rep.Report(ctx, op, errs.Validation("unknown mood %q", *p.Mood))
		}
		next.Mood = *p.Mood
	}
	if p.Tags != nil {
		next.Tags = normalizeTags(*p.Tags)
	}
	if p.Weather != nil {
		next.Weather = *p.Weather
	}
	if p.Location != nil {
		next.Location = *p.Location
	}
	if p.TemplateID != nil {
		next.TemplateID = *p.TemplateID
	}
	next.UpdatedAt = laterOf(cur.UpdatedAt, s.now())

	if err := s.repo.Update(ctx, next); err != nil {
		return model.JournalEntry{}, s.rep.Report(ctx, op, err)
	}
	if i := indexJournal(s.entries, id); i >= 0 {
		s.entries[i] = next
	}
	if i := indexJournal(s.results, id); i >= 0 {
		s.results[i] = next
	}
	return next, nil
}

// Delete removes the entry from storage, the window and the search results.
func (s *JournalServiceImpl) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, s.rep.Report(ctx, "journal.delete", err)
	}
	if i := indexJournal(s.entries, id); i >= 0 {
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	}
	if i := indexJournal(s.results, id); i >= 0 {
		s.results = append(s.results[:i:i], s.results[i+1:]...)
	}
	return true, nil
}

func (s *JournalServiceImpl) Search(ctx context.Context, term string) ([]model.JournalEntry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		s.mu.Lock()
		s.results = []model.JournalEntry{}
		s.mu.Unlock()
		return []model.JournalEntry{}, nil
	}
	found, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, s.rep.Report(ctx, "journal.search", err)
	}
	if found == nil {
		found = []model.JournalEntry{}
	}
	s.mu.Lock()
	s.results = found
	s.mu.Unlock()
	return append([]model.JournalEntry(nil), found...), nil
}

// EntriesByDate returns the entries whose timestamp falls on date's calendar day.
func (s *JournalServiceImpl) EntriesByDate(ctx context.Context, date time.Time) ([]model.JournalEntry, error) {
	day := model.DayRange(date.In(s.loc))
	list, err := s.repo.ListRange(ctx, day.Start, day.End)
	if err != nil {
		return nil, s.rep.Report(ctx, "journal.entriesByDate", err)
	}
	return list, nil
}

func (s *JournalServiceImpl) EntriesByMood(ctx context.Context, mood model.Mood) ([]model.JournalEntry, error) {
	const op = "journal.entriesByMood"
	if mood == "" || !mood.Valid() {
		return nil, s.rep.Report(ctx, op, errs.Validation("unknown mood %q", mood))
	}
	list, err := s.repo.ListByMood(ctx, mood)
	if err != nil {
		return nil, s.rep.Report(ctx, op, err)
	}
	return list, nil
}

// EntryForDate returns the entry the day-based flows treat as that date's entry:
// the earliest one written on it, or nil.
func (s *JournalServiceImpl) EntryForDate(ctx context.Context, date time.Time) (*model.JournalEntry, error) {
	list, err := s.EntriesByDate(ctx, date)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	e := list[len(list)-1]
	return &e, nil
}

func (s *JournalServiceImpl) MoodCounts(ctx context.Context, start, end time.Time) (map[model.Mood]int, error) {
	counts, err := s.repo.MoodCounts(ctx, start, end)
	if err != nil {
		return nil, s.rep.Report(ctx, "journal.moodCounts", err)
	}
	return counts, nil
}

// WritingStreak counts consecutive days with an entry, ending today. Only the loaded
// window is considered.
func (s *JournalServiceImpl) WritingStreak(now time.Time) streak.Result {
	s.mu.Lock()
	days := make([]time.Time, 0, len(s.entries))
	for _, e := range s.entries {
		days = append(days, e.Timestamp)
	}
	s.mu.Unlock()
	return streak.Compute(days, now, s.loc)
}

// normalizeTags trims tags, drops empty ones and keeps the first of duplicates.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func insertByTimestamp(list []model.JournalEntry, e model.JournalEntry) []model.JournalEntry {
	i := sort.Search(len(list), func(i int) bool { return !list[i].Timestamp.After(e.Timestamp) })
	list = append(list, model.JournalEntry{})
	copy(list[i+1:], list[i:])
	list[i] = e
	return list
}

func indexJournal(list []model.JournalEntry, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
