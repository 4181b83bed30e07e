// Package model defines domain records owned by the stores and persisted by repositories.
package model

import "time"

// Notification is a user-facing message handed to the notification presenter.
type Notification struct {
	Title string
	Body  string
}

// WeatherReport is what the weather/location collaborator returns on success.
type WeatherReport struct {
	Condition          string
	TemperatureCelsius float64
	LocationName       string
}

// VoiceCue is a single voice-guidance playback request.
type VoiceCue struct {
	Script  string
	VoiceID string
	Speed   float64
	Volume  float64
}

// ErrorRecord is one row of the append-only error log.
type ErrorRecord struct {
	ID        string
	Code      string
	Message   string // user-facing message
	Detail    string // raw error text
	Op        string // store operation that failed, e.g. "tasks.add"
	CreatedAt time.Time
}

// DateRange is a half-open [Start, End) interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DayRange returns the local calendar day containing t as a half-open range.
func DayRange(t time.Time) DateRange {
	start := StartOfDay(t)
	return DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
