package model

// Theme is the UI color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// GuidanceType selects the voice-guidance script family.
type GuidanceType string

const (
	GuidanceNone        GuidanceType = "none"
	GuidanceBreathing   GuidanceType = "breathing"
	GuidanceBodyScan    GuidanceType = "body-scan"
	GuidanceMindfulness GuidanceType = "mindfulness"
)

// Voice speed and volume bounds.
const (
	MinVoiceSpeed  = 0.7
	MaxVoiceSpeed  = 1.4
	MinVoiceVolume = 0.0
	MaxVoiceVolume = 1.0
)

// VoiceGuidance is the voice-guidance sub-record of Settings.
type VoiceGuidance struct {
	Enabled       bool         `json:"enabled"`
	GuidanceType  GuidanceType `json:"guidanceType"`
	SelectedVoice string       `json:"selectedVoice"`
	VoiceVolume   float64      `json:"voiceVolume"`
	VoiceSpeed    float64      `json:"voiceSpeed"`
}

// Settings is the singleton configuration record. Durations are minutes.
type Settings struct {
	Theme                   Theme         `json:"theme"`
	MeditationDuration      int           `json:"meditationDuration"`
	FocusDuration           int           `json:"focusDuration"`
	BreakDuration           int           `json:"breakDuration"`
	LongBreakDuration       int           `json:"longBreakDuration"`
	PomodorosUntilLongBreak int           `json:"pomodorosUntilLongBreak"`
	DailyFocusGoal          int           `json:"dailyFocusGoal"`
	SoundTheme              string        `json:"soundTheme"`
	KeepScreenAwake         bool          `json:"keepScreenAwake"`
	NotificationsEnabled    bool          `json:"notificationsEnabled"`
	VoiceGuidance           VoiceGuidance `json:"voiceGuidance"`
}

// DefaultSettings returns the record applied on first launch and on reset.
func DefaultSettings() Settings {
	return Settings{
		Theme:                   ThemeDark,
		MeditationDuration:      10,
		FocusDuration:           25,
		BreakDuration:           5,
		LongBreakDuration:       15,
		PomodorosUntilLongBreak: 4,
		DailyFocusGoal:          8,
		SoundTheme:              "rain",
		KeepScreenAwake:         true,
		NotificationsEnabled:    true,
		VoiceGuidance: VoiceGuidance{
			Enabled:       false,
			GuidanceType:  GuidanceBreathing,
			SelectedVoice: "default",
			VoiceVolume:   0.8,
			VoiceSpeed:    1.0,
		},
	}
}

// SettingsPatch carries a bulk update; nil fields are left untouched.
type SettingsPatch struct {
	Theme                   *Theme
	MeditationDuration      *int
	FocusDuration           *int
	BreakDuration           *int
	LongBreakDuration       *int
	PomodorosUntilLongBreak *int
	DailyFocusGoal          *int
	SoundTheme              *string
	KeepScreenAwake         *bool
	NotificationsEnabled    *bool
	VoiceGuidance           *VoiceGuidancePatch
}

// VoiceGuidancePatch carries a partial voice-guidance update.
type VoiceGuidancePatch struct {
	Enabled       *bool
	GuidanceType  *GuidanceType
	SelectedVoice *string
	VoiceVolume   *float64
	VoiceSpeed    *float64
}

// Apply returns s with every non-nil patch field applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.MeditationDuration != nil {
		s.MeditationDuration = *p.MeditationDuration
	}
	if p.FocusDuration != nil {
		s.FocusDuration = *p.FocusDuration
	}
	if p.BreakDuration != nil {
		s.BreakDuration = *p.BreakDuration
	}
	if p.LongBreakDuration != nil {
		s.LongBreakDuration = *p.LongBreakDuration
	}
	if p.PomodorosUntilLongBreak != nil {
		s.PomodorosUntilLongBreak = *p.PomodorosUntilLongBreak
	}
	if p.DailyFocusGoal != nil {
		s.DailyFocusGoal = *p.DailyFocusGoal
	}
	if p.SoundTheme != nil {
		s.SoundTheme = *p.SoundTheme
	}
	if p.KeepScreenAwake != nil {
		s.KeepScreenAwake = *p.KeepScreenAwake
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if v := p.VoiceGuidance; v != nil {
		if v.Enabled != nil {
			s.VoiceGuidance.Enabled = *v.Enabled
		}
		if v.GuidanceType != nil {
			s.VoiceGuidance.GuidanceType = *v.GuidanceType
		}
		if v.SelectedVoice != nil {
			s.VoiceGuidance.SelectedVoice = *v.SelectedVoice
		}
		if v.VoiceVolume != nil {
			s.VoiceGuidance.VoiceVolume = *v.VoiceVolume
		}
		if v.VoiceSpeed != nil {
			s.VoiceGuidance.VoiceSpeed = *v.VoiceSpeed
		}
	}
	return s
}
