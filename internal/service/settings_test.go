package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wellnest/wellnest/internal/errs"
	"github.com/wellnest/wellnest/internal/model"
)

func newTestSettings(t *testing.T) (*SettingsServiceImpl, *fakeKV, *fakeErrorLog) {
	t.Helper()
	kv := newFakeKV()
	rep, sink, _ := newTestReporter(t)
	return NewSettingsService(kv, rep, zaptest.NewLogger(t)), kv, sink
}

func TestSettings_FirstLaunchPersistsDefaults(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestSettings(t)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, model.DefaultSettings(), got)
	require.NotNil(t, kv.data[settingsKey])

	var stored model.Settings
	require.NoError(t, json.Unmarshal(kv.data[settingsKey], &stored))
	require.Equal(t, model.DefaultSettings(), stored)
}

func TestSettings_LoadBackfillsMissingFields(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestSettings(t)
	kv.data[settingsKey] = json.RawMessage(`{"theme":"light","focusDuration":50,"voiceGuidance":{"enabled":true}}`)

	got, err := s.Load(ctx)
	require.NoError(t, err)

	want := model.DefaultSettings()
	want.Theme = model.ThemeLight
	want.FocusDuration = 50
	want.VoiceGuidance.Enabled = true
	require.Equal(t, want, got)
	require.Equal(t, want, s.Current())
}

func TestSettings_LoadReplacesInvalidFields(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestSettings(t)
	kv.data[settingsKey] = json.RawMessage(`{"theme":"neon","breakDuration":0,"voiceGuidance":{"voiceSpeed":3}}`)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	d := model.DefaultSettings()
	require.Equal(t, d.Theme, got.Theme)
	require.Equal(t, d.BreakDuration, got.BreakDuration)
	require.Equal(t, d.VoiceGuidance.VoiceSpeed, got.VoiceGuidance.VoiceSpeed)
}

func TestSettings_LoadWrongTypeKeepsDefault(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestSettings(t)
	kv.data[settingsKey] = json.RawMessage(`{"focusDuration":"long","soundTheme":"forest"}`)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, model.DefaultSettings().FocusDuration, got.FocusDuration)
	require.Equal(t, "forest", got.SoundTheme)
}

func TestSettings_LoadCorruptRecordFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestSettings(t)
	kv.data[settingsKey] = json.RawMessage(`{"theme":`)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, model.DefaultSettings(), got)
}

func TestSettings_UpdateOne(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestSettings(t)
	_, err := s.Load(ctx)
	require.NoError(t, err)

	got, err := s.UpdateOne(ctx, "meditationDuration", 20)
	require.NoError(t, err)
	require.Equal(t, 20, got.MeditationDuration)

	var stored model.Settings
	require.NoError(t, json.Unmarshal(kv.data[settingsKey], &stored))
	require.Equal(t, got, stored, "full record written through")

	got, err = s.UpdateOne(ctx, "voiceGuidance", map[string]any{"voiceVolume": 0.5})
	require.NoError(t, err)
	require.Equal(t, 0.5, got.VoiceGuidance.VoiceVolume)
	require.Equal(t, model.DefaultSettings().VoiceGuidance.VoiceSpeed, got.VoiceGuidance.VoiceSpeed)
}

func TestSettings_UpdateOneRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s, _, sink := newTestSettings(t)

	cases := []struct {
		name  string
		key   string
		value any
	}{
		{"unknown key", "fontSize", 12},
		{"wrong type", "focusDuration", "twenty"},
		{"out of range", "focusDuration", 0},
		{"speed", "voiceGuidance", map[string]any{"voiceSpeed": 2.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.UpdateOne(ctx, tc.key, tc.value)
			require.Error(t, err)
			require.Equal(t, errs.CodeValidation, errs.Classify(err).Code)
			require.Equal(t, model.DefaultSettings(), s.Current())
		})
	}
	require.Len(t, sink.records, len(cases))
}

func TestSettings_UpdateManyAndReset(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSettings(t)

	theme, sound, speed := model.ThemeLight, "ocean", 1.2
	got, err := s.UpdateMany(ctx, model.SettingsPatch{
		Theme:         &theme,
		SoundTheme:    &sound,
		VoiceGuidance: &model.VoiceGuidancePatch{VoiceSpeed: &speed},
	})
	require.NoError(t, err)
	require.Equal(t, model.ThemeLight, got.Theme)
	require.Equal(t, "ocean", got.SoundTheme)
	require.Equal(t, 1.2, got.VoiceGuidance.VoiceSpeed)
	require.Equal(t, model.DefaultSettings().FocusDuration, got.FocusDuration)

	got, err = s.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, model.DefaultSettings(), got)
}

func TestSettings_WriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	s, kv, sink := newTestSettings(t)
	_, err := s.Load(ctx)
	require.NoError(t, err)

	kv.setErr = errors.New("storage quota exceeded")
	_, err = s.UpdateOne(ctx, "theme", "light")
	require.Error(t, err)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, "settings.updateOne", e.Op)
	require.Equal(t, model.ThemeDark, s.Current().Theme)
	require.Len(t, sink.records, 1)
}
