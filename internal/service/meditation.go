package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wellnest/wellnest/internal/errs"
	"github.com/wellnest/wellnest/internal/model"
	"github.com/wellnest/wellnest/internal/repository"
	"github.com/wellnest/wellnest/internal/streak"
	"github.com/wellnest/wellnest/internal/timer"
)

// meditationActiveKey holds the in-progress session in the key-value store.
const meditationActiveKey = "meditation.active"

// MeditationService owns the meditation history, the single in-progress session
// and the stats derived from them.
type MeditationService interface {
	Load(ctx context.Context) error
	Start(ctx context.Context) (model.MeditationSession, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	// End finalizes the active session. It returns nil, nil when nothing is active.
	End(ctx context.Context, notes string, rating int) (*model.MeditationSession, error)
	Update(ctx context.Context, id string, p model.MeditationPatch) (model.MeditationSession, error)
	Delete(ctx context.Context, id string) (bool, error)
	Active() *model.MeditationSession
	History() []model.MeditationSession
	Stats() model.MeditationStats
	Remaining(now time.Time) time.Duration
	// OnTick registers the countdown callback fired once a second while a session runs.
	OnTick(fn func(remaining time.Duration))
	Close()
}

type MeditationServiceImpl struct {
	repo     repository.MeditationRepository
	kv       repository.KVStore
	settings SettingsReader
	voice    VoicePlayer
	rep      *Reporter
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location
	interval time.Duration

	mu        sync.Mutex
	active    *model.MeditationSession
	history   []model.MeditationSession
	stats     model.MeditationStats
	onTick    func(time.Duration)
	countdown *timer.Ticker
	inTick    bool
}

// NewMeditationService constructs MeditationService. settings and voice may be nil.
// Streak days are taken in loc; nil means time.Local.
func NewMeditationService(repo repository.MeditationRepository, kv repository.KVStore, settings SettingsReader,
	voice VoicePlayer, rep *Reporter, log *zap.Logger, loc *time.Location) *MeditationServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &MeditationServiceImpl{
		repo:     repo,
		kv:       kv,
		settings: settings,
		voice:    voice,
		rep:      rep,
		log:      log,
		now:      time.Now,
		loc:      loc,
		interval: time.Second,
	}
}

// Load reads the finalized history and restores an interrupted in-progress session.
func (s *MeditationServiceImpl) Load(ctx context.Context) error {
	const op = "meditation.load"
	hist, err := s.repo.List(ctx)
	if err != nil {
		return s.rep.Report(ctx, op, err)
	}
	raw, err := s.kv.Get(ctx, meditationActiveKey)
	if err != nil {
		return s.rep.Report(ctx, op, err)
	}

	var active *model.MeditationSession
	if raw != nil {
		var snap model.MeditationSession
		switch err := json.Unmarshal(raw, &snap); {
		case err != nil:
			s.log.Warn("meditation: dropping unreadable active snapshot", zap.Error(err))
			s.dropSnapshot(ctx)
		case snap.Completed || indexMeditation(hist, snap.ID) >= 0:
			// finalized but the snapshot removal did not land
			s.dropSnapshot(ctx)
		default:
			active = &snap
		}
	}

	s.mu.Lock()
	s.history = hist
	s.active = active
	s.recompute()
	start := active != nil && s.onTick != nil && s.countdown == nil
	if start {
		s.countdown = s.newCountdown()
	}
	tk := s.countdown
	s.mu.Unlock()
	if start {
		tk.Start()
	}
	s.log.Debug("meditation history loaded", zap.Int("count", len(hist)), zap.Bool("active", active != nil))
	return nil
}

// Start begins a session using the target duration and sound theme from settings.
func (s *MeditationServiceImpl) Start(ctx context.Context) (model.MeditationSession, error) {
	const op = "meditation.start"
	st := model.DefaultSettings()
	if s.settings != nil {
		st = s.settings.Current()
	}

	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return model.MeditationSession{}, s.rep.Report(ctx, op, errs.ErrConflict)
	}
	id, err := newID()
	if err != nil {
		s.mu.Unlock()
		return model.MeditationSession{}, s.rep.Report(ctx, op, err)
	}
	sess := model.MeditationSession{
		ID:             id,
		StartTime:      s.now(),
		SoundTheme:     st.SoundTheme,
		TargetDuration: st.MeditationDuration * 60,
	}
	if err := s.kv.Set(ctx, meditationActiveKey, sess); err != nil {
		s.mu.Unlock()
		return model.MeditationSession{}, s.rep.Report(ctx, op, err)
	}
	s.active = &sess
	var tk *timer.Ticker
	if s.onTick != nil {
		s.countdown = s.newCountdown()
		tk = s.countdown
	}
	s.mu.Unlock()

	if tk != nil {
		tk.Start()
	}
	s.playGuidance(ctx, st)
	return sess, nil
}

func (s *MeditationServiceImpl) playGuidance(ctx context.Context, st model.Settings) {
	vg := st.VoiceGuidance
	if s.voice == nil || !vg.Enabled || vg.GuidanceType == model.GuidanceNone {
		return
	}
	cue := model.VoiceCue{
		Script:  string(vg.GuidanceType),
		VoiceID: vg.SelectedVoice,
		Speed:   vg.VoiceSpeed,
		Volume:  vg.VoiceVolume,
	}
	if err := s.voice.Play(ctx, cue); err != nil {
		s.log.Warn("voice guidance playback failed", zap.String("script", cue.Script), zap.Error(err))
	}
}

// Pause records the pause instant. It does nothing without an active, running session.
func (s *MeditationServiceImpl) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.Paused {
		return nil
	}
	next := *s.active
	at := s.now()
	next.Paused = true
	next.PausedAt = &at
	return s.snapshot(ctx, "meditation.pause", next)
}

// Resume adds the elapsed pause to TotalPausedTime. It does nothing unless paused.
func (s *MeditationServiceImpl) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || !s.active.Paused {
		return nil
	}
	next := *s.active
	closePause(&next, s.now())
	return s.snapshot(ctx, "meditation.resume", next)
}

// closePause folds an open pause interval into TotalPausedTime.
func closePause(m *model.MeditationSession, now time.Time) {
	if m.Paused && m.PausedAt != nil {
		if d := int(now.Sub(*m.PausedAt) / time.Second); d > 0 {
			m.TotalPausedTime += d
		}
	}
	m.Paused = false
	m.PausedAt = nil
}

// snapshot persists next as the in-progress session and commits it. Caller holds s.mu.
func (s *MeditationServiceImpl) snapshot(ctx context.Context, op string, next model.MeditationSession) error {
	if err := s.kv.Set(ctx, meditationActiveKey, next); err != nil {
		return s.rep.Report(ctx, op, err)
	}
	s.active = &next
	return nil
}

// End finalizes the active session: duration excludes paused time and is computed once.
func (s *MeditationServiceImpl) End(ctx context.Context, notes string, rating int) (*model.MeditationSession, error) {
	const op = "meditation.end"
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return nil, nil
	}
	if rating < model.MinRating || rating > model.MaxRating {
		s.mu.Unlock()
		return nil, s.rep.Report(ctx, op, errs.Validation("rating %d out of range", rating))
	}
	now := s.now()
	next := *s.active
	closePause(&next, now)
	dur := int(now.Sub(next.StartTime)/time.Second) - next.TotalPausedTime
	if dur < 0 {
		dur = 0
	}
	next.EndTime = &now
	next.Duration = dur
	next.Completed = true
	next.Notes = notes
	next.Rating = rating
	next.MaintainsStreak = time.Duration(dur)*time.Second >= model.StreakThreshold

	if err := s.repo.Insert(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, s.rep.Report(ctx, op, err)
	}
	s.dropSnapshot(ctx)
	s.history = append([]model.MeditationSession{next}, s.history...)
	s.active = nil
	s.recompute()
	tk, inTick := s.countdown, s.inTick
	s.countdown = nil
	s.mu.Unlock()

	if tk != nil {
		if inTick {
			// called from the countdown callback; the tick goroutine exits on its own
			go tk.Stop()
		} else {
			tk.Stop()
		}
	}
	s.log.Debug("meditation session finished", zap.String("id", next.ID), zap.Int("duration", dur),
		zap.Bool("streak", next.MaintainsStreak))
	return &next, nil
}

func (s *MeditationServiceImpl) dropSnapshot(ctx context.Context) {
	if err := s.kv.Remove(ctx, meditationActiveKey); err != nil {
		s.log.Warn("meditation: remove active snapshot", zap.Error(err))
	}
}

// Update edits notes and rating of a finalized session.
func (s *MeditationServiceImpl) Update(ctx context.Context, id string, p model.MeditationPatch) (model.MeditationSession, error) {
	const op = "meditation.update"
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur model.MeditationSession
	if i := indexMeditation(s.history, id); i >= 0 {
		cur = s.history[i]
	} else {
		got, err := s.repo.Get(ctx, id)
		if err != nil {
			return model.MeditationSession{}, s.rep.Report(ctx, op, err)
		}
		cur = *got
	}
	next := cur
	if p.Notes != nil {
		next.Notes = *p.Notes
	}
	if p.Rating != nil {
		if *p.Rating < model.MinRating || *p.Rating > model.MaxRating {
			return model.MeditationSession{}, s.rep.Report(ctx, op, errs.Validation("rating %d out of range", *p.Rating))
		}
		next.Rating = *p.Rating
	}
	if err := s.repo.UpdateNotes(ctx, id, next.Notes, next.Rating); err != nil {
		return model.MeditationSession{}, s.rep.Report(ctx, op, err)
	}
	if i := indexMeditation(s.history, id); i >= 0 {
		s.history[i] = next
		s.recompute()
	}
	return next, nil
}

// Delete removes a finalized session and recomputes stats.
func (s *MeditationServiceImpl) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, s.rep.Report(ctx, "meditation.delete", err)
	}
	if i := indexMeditation(s.history, id); i >= 0 {
		s.history = append(s.history[:i:i], s.history[i+1:]...)
		s.recompute()
	}
	return true, nil
}

func (s *MeditationServiceImpl) Active() *model.MeditationSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	a := *s.active
	return &a
}

func (s *MeditationServiceImpl) History() []model.MeditationSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.MeditationSession(nil), s.history...)
}

func (s *MeditationServiceImpl) Stats() model.MeditationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// recompute derives stats from the history. Caller holds s.mu.
func (s *MeditationServiceImpl) recompute() {
	var (
		st      model.MeditationStats
		seconds int
		rated   int
		ratings int
		days    []time.Time
	)
	for _, m := range s.history {
		if !m.Completed {
			continue
		}
		st.TotalSessions++
		seconds += m.Duration
		if m.Rating > 0 {
			rated++
			ratings += m.Rating
		}
		if m.MaintainsStreak {
			days = append(days, m.StartTime)
		}
	}
	st.TotalMinutes = seconds / 60
	if rated > 0 {
		st.AverageRating = float64(ratings) / float64(rated)
	}
	r := streak.Compute(days, s.now(), s.loc)
	st.CurrentStreak, st.LongestStreak = r.Current, r.Longest
	s.stats = st
}

// Remaining is the time left on the active session at now; paused time does not count.
func (s *MeditationServiceImpl) Remaining(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining(now)
}

func (s *MeditationServiceImpl) remaining(now time.Time) time.Duration {
	if s.active == nil {
		return 0
	}
	a := *s.active
	elapsed := now.Sub(a.StartTime) - time.Duration(a.TotalPausedTime)*time.Second
	if a.Paused && a.PausedAt != nil {
		elapsed -= now.Sub(*a.PausedAt)
	}
	left := time.Duration(a.TargetDuration)*time.Second - elapsed
	if left < 0 {
		return 0
	}
	return left
}

// OnTick sets the countdown callback. It takes effect from the next Start or Load.
func (s *MeditationServiceImpl) OnTick(fn func(remaining time.Duration)) {
	s.mu.Lock()
	s.onTick = fn
	s.mu.Unlock()
}

// newCountdown builds a ticker bound to the current session. Caller holds s.mu.
func (s *MeditationServiceImpl) newCountdown() *timer.Ticker {
	var tk *timer.Ticker
	tk = timer.New(s.interval, func(now time.Time) {
		s.mu.Lock()
		if s.countdown != tk || s.active == nil || s.active.Paused || s.onTick == nil {
			s.mu.Unlock()
			return
		}
		left, fn := s.remaining(now), s.onTick
		s.inTick = true
		s.mu.Unlock()

		fn(left)

		s.mu.Lock()
		s.inTick = false
		s.mu.Unlock()
	})
	return tk
}

// Close stops the countdown. The in-progress snapshot stays in the key-value store.
func (s *MeditationServiceImpl) Close() {
	s.mu.Lock()
	tk := s.countdown
	s.countdown = nil
	s.mu.Unlock()
	if tk != nil {
		tk.Stop()
	}
}

func indexMeditation(list []model.MeditationSession, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
