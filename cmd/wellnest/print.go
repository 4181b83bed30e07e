package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/wellnest/wellnest/internal/model"
)

const dateLayout = "2006-01-02"

// printer renders command output as aligned tables.
type printer struct {
	w io.Writer
}

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
)

func (p printer) title(s string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(p.w, s)
}

func (p printer) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(p.w, " none\n\n")
}

func (p printer) table(tbl *uitable.Table) {
	_, _ = fmt.Fprintln(p.w, tbl)
	_, _ = fmt.Fprintln(p.w)
}

func (p printer) stats(days int, med model.MeditationStats, focus model.FocusStats, journalStreak int) {
	p.title("Meditation")
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("sessions", med.TotalSessions)
	tbl.AddRow("minutes", med.TotalMinutes)
	tbl.AddRow("current streak", med.CurrentStreak)
	tbl.AddRow("longest streak", med.LongestStreak)
	tbl.AddRow("average rating", strconv.FormatFloat(med.AverageRating, 'f', 1, 64))
	tbl.RightAlign(1)
	p.table(tbl)

	p.title(fmt.Sprintf("Focus (last %d days)", days))
	tbl = uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("sessions", focus.Sessions)
	tbl.AddRow("completed", focus.CompletedSessions)
	tbl.AddRow("focused", (time.Duration(focus.TotalSeconds) * time.Second).String())
	tbl.AddRow("interruptions", focus.Interruptions)
	tbl.AddRow("pomodoros", focus.Pomodoros)
	tbl.RightAlign(1)
	p.table(tbl)

	p.title("Journal")
	tbl = uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("writing streak", journalStreak)
	tbl.RightAlign(1)
	p.table(tbl)
}

func (p printer) tasks(tasks []model.Task, now time.Time) {
	p.title(fmt.Sprintf("Tasks - %d", len(tasks)))
	if len(tasks) == 0 {
		p.none()
		return
	}
	overdue := color.New(color.FgRed)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 50
	tbl.AddRow(bold.Sprint(""), bold.Sprint("ID"), bold.Sprint("Title"), bold.Sprint("Priority"),
		bold.Sprint("Category"), bold.Sprint("Due"))
	for _, t := range tasks {
		mark := "•"
		if t.Completed {
			mark = "✓"
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format(dateLayout)
			if !t.Completed && t.DueDate.Before(model.StartOfDay(now)) {
				due = overdue.Sprint(due)
			}
		}
		tbl.AddRow(mark, faint.Sprint(shortID(t.ID)), t.Title, string(t.Priority), t.Category, due)
	}
	p.table(tbl)
}

func (p printer) journal(entries []model.JournalEntry, loc *time.Location) {
	p.title(fmt.Sprintf("Journal - %d", len(entries)))
	if len(entries) == 0 {
		p.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("Date"), bold.Sprint("Mood"), bold.Sprint("Tags"), bold.Sprint("Entry"))
	for _, e := range entries {
		tbl.AddRow(e.Timestamp.In(loc).Format(dateLayout), string(e.Mood), strings.Join(e.Tags, ","), firstLine(e.Content))
	}
	p.table(tbl)
}

func (p printer) settings(st model.Settings) {
	p.title("Settings")
	vg := st.VoiceGuidance
	tbl := uitable.New()
	tbl.Separator = "  "
	rows := [][2]any{
		{"theme", st.Theme},
		{"meditationDuration", st.MeditationDuration},
		{"focusDuration", st.FocusDuration},
		{"breakDuration", st.BreakDuration},
		{"longBreakDuration", st.LongBreakDuration},
		{"pomodorosUntilLongBreak", st.PomodorosUntilLongBreak},
		{"dailyFocusGoal", st.DailyFocusGoal},
		{"soundTheme", st.SoundTheme},
		{"keepScreenAwake", st.KeepScreenAwake},
		{"notificationsEnabled", st.NotificationsEnabled},
		{"voiceGuidance.enabled", vg.Enabled},
		{"voiceGuidance.guidanceType", vg.GuidanceType},
		{"voiceGuidance.selectedVoice", vg.SelectedVoice},
		{"voiceGuidance.voiceVolume", vg.VoiceVolume},
		{"voiceGuidance.voiceSpeed", vg.VoiceSpeed},
	}
	for _, r := range rows {
		tbl.AddRow(faint.Sprint(r[0]), r[1])
	}
	p.table(tbl)
}

func (p printer) errors(recs []model.ErrorRecord) {
	p.title(fmt.Sprintf("Error log - %d", len(recs)))
	if len(recs) == 0 {
		p.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("When"), bold.Sprint("Code"), bold.Sprint("Op"), bold.Sprint("Detail"))
	for _, r := range recs {
		tbl.AddRow(r.CreatedAt.Local().Format(time.DateTime), r.Code, r.Op, r.Detail)
	}
	p.table(tbl)
}

func (p printer) state(keys, values []string) {
	p.title(fmt.Sprintf("Stored records - %d", len(keys)))
	if len(keys) == 0 {
		p.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 80
	tbl.AddRow(bold.Sprint("Key"), bold.Sprint("Value"))
	for i, k := range keys {
		tbl.AddRow(k, values[i])
	}
	p.table(tbl)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
