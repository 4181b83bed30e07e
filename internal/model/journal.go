package model

import "time"

// Mood is the optional emotional tag of a journal entry.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodCalm     Mood = "calm"
	MoodNeutral  Mood = "neutral"
	MoodSad      Mood = "sad"
	MoodAnxious  Mood = "anxious"
	MoodAngry    Mood = "angry"
	MoodGrateful Mood = "grateful"
	MoodTired    Mood = "tired"
)

// Moods lists every known mood.
var Moods = []Mood{MoodHappy, MoodCalm, MoodNeutral, MoodSad, MoodAnxious, MoodAngry, MoodGrateful, MoodTired}

// Valid reports whether m is empty or a known mood.
func (m Mood) Valid() bool {
	if m == "" {
		return true
	}
	for _, k := range Moods {
		if k == m {
			return true
		}
	}
	return false
}

// JournalEntry is one journal note. Content may contain markdown.
type JournalEntry struct {
	ID         string
	Content    string
	Mood       Mood
	Tags       []string
	Timestamp  time.Time
	Weather    string
	Location   string
	TemplateID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// JournalInput creates an entry. A zero Timestamp means now.
type JournalInput struct {
	Content    string
	Mood       Mood
	Tags       []string
	Timestamp  time.Time
	Weather    string
	Location   string
	TemplateID string
}

// JournalPatch is a partial entry update.
type JournalPatch struct {
	Content    *string
	Mood       *Mood
	Tags       *[]string
	Weather    *string
	Location   *string
	TemplateID *string
}
