package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wellnest/wellnest/internal/model"
)

// run executes the root command against a fresh data directory.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WELLNEST_DATA_DIR", dataDir)
	t.Setenv("WELLNEST_CONFIG_PATH", dataDir)
	t.Setenv("WELLNEST_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	out, err := run(t, t.TempDir(), "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "schema version 1 (sqlite)")
}

func TestSettingsShowAndReset(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "settings", "show")
	require.NoError(t, err)
	require.Contains(t, out, "focusDuration")
	require.Contains(t, out, "rain")

	out, err = run(t, dir, "settings", "reset")
	require.NoError(t, err)
	require.Contains(t, out, "meditationDuration")
}

func TestStateListsStoredRecords(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "settings", "reset")
	require.NoError(t, err)

	out, err := run(t, dir, "state")
	require.NoError(t, err)
	require.Contains(t, out, "Stored records - 1")
	require.Contains(t, out, "settings")
}

func TestTasksAndJournalAgainstStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WELLNEST_DATA_DIR", dir)
	t.Setenv("WELLNEST_CONFIG_PATH", dir)
	t.Setenv("WELLNEST_LOG_LEVEL", "error")

	ctx := context.Background()
	var discard bytes.Buffer
	a, err := openApp(ctx, &discard)
	require.NoError(t, err)
	_, err = a.tasks.Add(ctx, model.TaskInput{Title: "stretch", Priority: model.PriorityHigh})
	require.NoError(t, err)
	_, err = a.journal.Add(ctx, model.JournalInput{Content: "grateful for sunshine\nand coffee", Mood: model.MoodGrateful})
	require.NoError(t, err)
	_, err = a.meditation.Start(ctx)
	require.NoError(t, err)
	a.Close()

	out, err := run(t, dir, "tasks", "--sort", "priority")
	require.NoError(t, err)
	require.Contains(t, out, "stretch")
	require.Contains(t, out, "Tasks - 1")

	out, err = run(t, dir, "journal", "search", "sunshine")
	require.NoError(t, err)
	require.Contains(t, out, "grateful for sunshine")
	require.NotContains(t, out, "and coffee")

	out, err = run(t, dir, "stats", "--days", "1")
	require.NoError(t, err)
	require.Contains(t, out, "writing streak")
}

func TestBadFlags(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "tasks", "--filter", "someday")
	require.ErrorContains(t, err, "unknown filter")
	_, err = run(t, dir, "stats", "--days", "0")
	require.Error(t, err)
}

func TestErrorsCommandShowsLoggedFailures(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WELLNEST_DATA_DIR", dir)
	t.Setenv("WELLNEST_CONFIG_PATH", dir)
	t.Setenv("WELLNEST_LOG_LEVEL", "error")

	ctx := context.Background()
	var notes bytes.Buffer
	a, err := openApp(ctx, &notes)
	require.NoError(t, err)
	_, err = a.focus.Start(ctx, model.FocusInput{})
	require.NoError(t, err)
	_, err = a.focus.Start(ctx, model.FocusInput{})
	require.Error(t, err)
	require.Contains(t, notes.String(), "Heads up:")
	a.Close()

	out, err := run(t, dir, "errors", "--limit", "5")
	require.NoError(t, err)
	require.Contains(t, out, "CONFLICT")
	require.Contains(t, out, "focus.start")
}

func TestFirstLineAndShortID(t *testing.T) {
	require.Equal(t, "a", firstLine("  a\nb"))
	require.Equal(t, "12345678", shortID("1234567890"))
	require.Equal(t, "abc", shortID("abc"))
}
