package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wellnest/wellnest/internal/errs"
	"github.com/wellnest/wellnest/internal/model"
	"github.com/wellnest/wellnest/internal/repository"
)

const settingsKey = "settings"

// SettingsService holds the singleton settings record.
type SettingsService interface {
	// Load reads persisted settings and back-fills every missing field from defaults.
	Load(ctx context.Context) (model.Settings, error)
	// Current returns the in-memory record (defaults before Load).
	Current() model.Settings
	// UpdateOne sets a single top-level field by its JSON key.
	UpdateOne(ctx context.Context, key string, value any) (model.Settings, error)
	// UpdateMany applies a bulk patch.
	UpdateMany(ctx context.Context, patch model.SettingsPatch) (model.Settings, error)
	// Reset re-applies defaults.
	Reset(ctx context.Context) (model.Settings, error)
}

type SettingsServiceImpl struct {
	kv  repository.KVStore
	rep *Reporter
	log *zap.Logger

	mu  sync.RWMutex
	cur model.Settings
}

// NewSettingsService constructs SettingsService over a key-value store.
func NewSettingsService(kv repository.KVStore, rep *Reporter, log *zap.Logger) *SettingsServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsServiceImpl{kv: kv, rep: rep, log: log, cur: model.DefaultSettings()}
}

// settingKeys are the top-level JSON keys UpdateOne accepts.
var settingKeys = func() map[string]bool {
	b, _ := json.Marshal(model.DefaultSettings())
	var m map[string]json.RawMessage
	_ = json.Unmarshal(b, &m)
	keys := make(map[string]bool, len(m))
	for k := range m {
		keys[k] = true
	}
	return keys
}()

// Load merges the persisted JSON onto defaults field by field. Out-of-range values are
// replaced by their defaults too. First launch persists the defaults.
func (s *SettingsServiceImpl) Load(ctx context.Context) (model.Settings, error) {
	const op = "settings.load"
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, settingsKey)
	if err != nil {
		s.cur = model.DefaultSettings()
		return s.cur, s.rep.Report(ctx, op, err)
	}
	if raw == nil {
		s.cur = model.DefaultSettings()
		if err := s.kv.Set(ctx, settingsKey, s.cur); err != nil {
			return s.cur, s.rep.Report(ctx, op, err)
		}
		s.log.Debug("settings initialized with defaults")
		return s.cur, nil
	}

	merged, err := decodeSettings(raw)
	if err != nil {
		s.log.Warn("settings: unreadable record, using defaults", zap.Error(err))
	}
	merged, fixed := sanitizeSettings(merged)
	if len(fixed) > 0 {
		s.log.Warn("settings: invalid fields reset to defaults", zap.Strings("fields", fixed))
	}
	s.cur = merged
	s.log.Debug("settings loaded", zap.String("settings", settingsSummary(s.cur)))
	return s.cur, nil
}

// decodeSettings unmarshals raw onto defaults. A field with the wrong JSON type keeps its
// default; a syntax error yields pure defaults.
func decodeSettings(raw json.RawMessage) (model.Settings, error) {
	merged := model.DefaultSettings()
	err := json.Unmarshal(raw, &merged)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return merged, nil
	case errors.As(err, &typeErr):
		return merged, err
	default:
		return model.DefaultSettings(), err
	}
}

// Current returns a copy of the in-memory record.
func (s *SettingsServiceImpl) Current() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// UpdateOne merges {key: value} into the current record.
func (s *SettingsServiceImpl) UpdateOne(ctx context.Context, key string, value any) (model.Settings, error) {
	const op = "settings.updateOne"
	s.mu.Lock()
	defer s.mu.Unlock()

	if !settingKeys[key] {
		return s.cur, s.rep.Report(ctx, op, errs.Validation("unknown setting %q", key))
	}
	b, err := json.Marshal(map[string]any{key: value})
	if err != nil {
		return s.cur, s.rep.Report(ctx, op, errs.Validation("setting %q: %v", key, err))
	}
	next := s.cur
	if err := json.Unmarshal(b, &next); err != nil {
		return s.cur, s.rep.Report(ctx, op, errs.Validation("setting %q: %v", key, err))
	}
	return s.commit(ctx, op, next)
}

// UpdateMany applies patch to the current record.
func (s *SettingsServiceImpl) UpdateMany(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, "settings.updateMany", patch.Apply(s.cur))
}

// Reset persists and applies the defaults.
func (s *SettingsServiceImpl) Reset(ctx context.Context) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, "settings.reset", model.DefaultSettings())
}

// commit validates next, writes the full record and only then replaces the in-memory copy.
// Caller holds s.mu.
func (s *SettingsServiceImpl) commit(ctx context.Context, op string, next model.Settings) (model.Settings, error) {
	if err := validateSettings(next); err != nil {
		return s.cur, s.rep.Report(ctx, op, err)
	}
	if err := s.kv.Set(ctx, settingsKey, next); err != nil {
		return s.cur, s.rep.Report(ctx, op, err)
	}
	s.cur = next
	return s.cur, nil
}

func validateSettings(st model.Settings) error {
	if _, fixed := sanitizeSettings(st); len(fixed) > 0 {
		return errs.Validation("invalid settings: %v", fixed)
	}
	return nil
}

// sanitizeSettings replaces every invalid field of st with its default and reports
// the JSON names of the fields it touched.
func sanitizeSettings(st model.Settings) (model.Settings, []string) {
	d := model.DefaultSettings()
	var fixed []string
	fix := func(name string, bad bool, apply func()) {
		if bad {
			apply()
			fixed = append(fixed, name)
		}
	}

	fix("theme", st.Theme != model.ThemeDark && st.Theme != model.ThemeLight, func() { st.Theme = d.Theme })
	fix("meditationDuration", st.MeditationDuration <= 0, func() { st.MeditationDuration = d.MeditationDuration })
	fix("focusDuration", st.FocusDuration <= 0, func() { st.FocusDuration = d.FocusDuration })
	fix("breakDuration", st.BreakDuration <= 0, func() { st.BreakDuration = d.BreakDuration })
	fix("longBreakDuration", st.LongBreakDuration <= 0, func() { st.LongBreakDuration = d.LongBreakDuration })
	fix("pomodorosUntilLongBreak", st.PomodorosUntilLongBreak <= 0, func() { st.PomodorosUntilLongBreak = d.PomodorosUntilLongBreak })
	fix("dailyFocusGoal", st.DailyFocusGoal < 0, func() { st.DailyFocusGoal = d.DailyFocusGoal })
	fix("soundTheme", st.SoundTheme == "", func() { st.SoundTheme = d.SoundTheme })

	vg, dv := &st.VoiceGuidance, d.VoiceGuidance
	fix("voiceGuidance.guidanceType", !validGuidance(vg.GuidanceType), func() { vg.GuidanceType = dv.GuidanceType })
	fix("voiceGuidance.selectedVoice", vg.SelectedVoice == "", func() { vg.SelectedVoice = dv.SelectedVoice })
	fix("voiceGuidance.voiceVolume", vg.VoiceVolume < model.MinVoiceVolume || vg.VoiceVolume > model.MaxVoiceVolume,
		func() { vg.VoiceVolume = dv.VoiceVolume })
	fix("voiceGuidance.voiceSpeed", vg.VoiceSpeed < model.MinVoiceSpeed || vg.VoiceSpeed > model.MaxVoiceSpeed,
		func() { vg.VoiceSpeed = dv.VoiceSpeed })
	return st, fixed
}

func validGuidance(g model.GuidanceType) bool {
	switch g {
	case model.GuidanceNone, model.GuidanceBreathing, model.GuidanceBodyScan, model.GuidanceMindfulness:
		return true
	}
	return false
}

// settingsSummary renders the headline fields for debug logs.
func settingsSummary(st model.Settings) string {
	return fmt.Sprintf("theme=%s meditation=%dm focus=%dm break=%dm", st.Theme, st.MeditationDuration,
		st.FocusDuration, st.BreakDuration)
}
