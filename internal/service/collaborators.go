package service

import (
	"context"

	"github.com/wellnest/wellnest/internal/model"
)

// Presenter shows a notification to the user (toast or system notification).
type Presenter interface {
	Present(ctx context.Context, n model.Notification) error
}

// WeatherProvider resolves current weather and place name for journal metadata.
type WeatherProvider interface {
	Current(ctx context.Context) (model.WeatherReport, error)
}

// VoicePlayer plays a voice-guidance cue.
type VoicePlayer interface {
	Play(ctx context.Context, cue model.VoiceCue) error
}

// SettingsReader exposes the current settings to other stores.
type SettingsReader interface {
	Current() model.Settings
}

// TaskLookup resolves a task id; ok is false for unknown ids.
type TaskLookup interface {
	Lookup(id string) (model.Task, bool)
}
