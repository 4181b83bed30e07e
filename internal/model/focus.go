package model

import "time"

// FocusSession is one timed focus block. Duration and BreakDuration are seconds.
// TaskID is a weak reference: the task may no longer exist.
type FocusSession struct {
	ID                string
	Duration          int
	BreakDuration     int
	TaskID            string
	StartTime         time.Time
	EndTime           *time.Time
	Completed         bool
	Interrupted       bool
	InterruptionCount int
	PomodoroCount     int
}

// Active reports whether the session is still running.
func (s FocusSession) Active() bool { return !s.Completed }

// FocusInput starts a session. Zero durations fall back to settings.
type FocusInput struct {
	Duration      int
	BreakDuration int
	TaskID        string
}

// FocusOverrides adjusts the finalized values on completion.
type FocusOverrides struct {
	EndTime           *time.Time
	InterruptionCount *int
	PomodoroCount     *int
}

// FocusPatch is an explicit user edit of a session.
type FocusPatch struct {
	TaskID *string
}

// FocusStats aggregates persisted sessions over a date range.
type FocusStats struct {
	Sessions          int
	CompletedSessions int
	TotalSeconds      int64
	Interruptions     int64
	Pomodoros         int64
}

// FocusPhase is what the timer should run after a pomodoro finishes.
type FocusPhase string

const (
	PhaseFocus     FocusPhase = "focus"
	PhaseBreak     FocusPhase = "break"
	PhaseLongBreak FocusPhase = "long_break"
)
