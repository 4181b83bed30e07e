package model

import "time"

// StreakThreshold is the minimum finalized duration that keeps a streak alive.
const StreakThreshold = 300 * time.Second

// Rating bounds.
const (
	MinRating = 0
	MaxRating = 5
)

// MeditationSession is one sitting. Duration, TotalPausedTime and TargetDuration are
// seconds; Duration stays 0 until the session is finalized.
type MeditationSession struct {
	ID              string
	StartTime       time.Time
	EndTime         *time.Time
	Duration        int
	Completed       bool
	TotalPausedTime int
	SoundTheme      string
	Notes           string
	Rating          int
	TargetDuration  int
	Paused          bool
	PausedAt        *time.Time
	MaintainsStreak bool
}

// MeditationPatch edits a finalized session.
type MeditationPatch struct {
	Notes  *string
	Rating *int
}

// MeditationStats is derived from the full session history.
type MeditationStats struct {
	TotalSessions int
	TotalMinutes  int
	CurrentStreak int
	LongestStreak int
	AverageRating float64
}
