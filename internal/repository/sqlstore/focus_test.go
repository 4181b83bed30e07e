package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wellnest/wellnest/internal/errs"
	"github.com/wellnest/wellnest/internal/model"
)

func sampleFocus(id, taskID string, start time.Time) model.FocusSession {
	return model.FocusSession{
		ID:            id,
		Duration:      1500,
		BreakDuration: 300,
		TaskID:        taskID,
		StartTime:     start,
		PomodoroCount: 1,
	}
}

func TestFocusRepo_StartSetsActivePointer(t *testing.T) {
	db := newTestDB(t)
	r := NewFocusRepo(db)
	ctx := context.Background()

	active, err := r.Active(ctx)
	require.NoError(t, err)
	require.Nil(t, active)

	require.NoError(t, r.Start(ctx, sampleFocus("f1", "", time.Now())))
	active, err = r.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, "f1", active.ID)
	require.Empty(t, active.TaskID)
	require.False(t, active.Completed)
	require.Equal(t, 1, active.PomodoroCount)
}

func TestFocusRepo_CompleteWritesDeltaAndClearsPointer(t *testing.T) {
	db := newTestDB(t)
	r := NewFocusRepo(db)
	ctx := context.Background()
	start := time.Now().Add(-25 * time.Minute)
	require.NoError(t, r.Start(ctx, sampleFocus("f1", "task-1", start)))

	end := time.Now()
	s := sampleFocus("f1", "task-1", start)
	s.EndTime = &end
	s.Completed = true
	s.Interrupted = true
	s.InterruptionCount = 2
	s.PomodoroCount = 3
	require.NoError(t, r.Complete(ctx, s))

	got, err := r.Get(ctx, "f1")
	require.NoError(t, err)
	require.True(t, got.Completed)
	require.NotNil(t, got.EndTime)
	require.True(t, got.EndTime.Equal(end))
	require.Equal(t, 2, got.InterruptionCount)
	require.Equal(t, 3, got.PomodoroCount)
	require.True(t, got.Interrupted)

	active, err := r.Active(ctx)
	require.NoError(t, err)
	require.Nil(t, active)
}

func TestFocusRepo_CompleteUnknown(t *testing.T) {
	db := newTestDB(t)
	r := NewFocusRepo(db)
	end := time.Now()
	s := sampleFocus("ghost", "", time.Now())
	s.EndTime = &end
	require.ErrorIs(t, r.Complete(context.Background(), s), errs.ErrNotFound)
}

func TestFocusRepo_CountersAndTask(t *testing.T) {
	db := newTestDB(t)
	r := NewFocusRepo(db)
	ctx := context.Background()
	require.NoError(t, r.Start(ctx, sampleFocus("f1", "", time.Now())))

	s := sampleFocus("f1", "", time.Now())
	s.Interrupted = true
	s.InterruptionCount = 1
	s.PomodoroCount = 2
	require.NoError(t, r.UpdateCounters(ctx, s))
	require.NoError(t, r.SetTask(ctx, "f1", "task-9"))

	got, err := r.Get(ctx, "f1")
	require.NoError(t, err)
	require.Equal(t, 1, got.InterruptionCount)
	require.Equal(t, 2, got.PomodoroCount)
	require.Equal(t, "task-9", got.TaskID)

	require.NoError(t, r.SetTask(ctx, "f1", ""))
	got, err = r.Get(ctx, "f1")
	require.NoError(t, err)
	require.Empty(t, got.TaskID)
}

func TestFocusRepo_DeleteActiveClearsPointer(t *testing.T) {
	db := newTestDB(t)
	r := NewFocusRepo(db)
	ctx := context.Background()
	require.NoError(t, r.Start(ctx, sampleFocus("f1", "", time.Now())))
	require.NoError(t, r.Delete(ctx, "f1"))

	active, err := r.Active(ctx)
	require.NoError(t, err)
	require.Nil(t, active)
	require.ErrorIs(t, r.Delete(ctx, "f1"), errs.ErrNotFound)
}

func TestFocusRepo_RangeAndStats(t *testing.T) {
	db := newTestDB(t)
	r := NewFocusRepo(db)
	ctx := context.Background()
	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	complete := func(id string, start time.Time, interruptions, pomodoros int) {
		require.NoError(t, r.Start(ctx, sampleFocus(id, "", start)))
		s := sampleFocus(id, "", start)
		end := start.Add(25 * time.Minute)
		s.EndTime, s.Completed = &end, true
		s.InterruptionCount, s.PomodoroCount = interruptions, pomodoros
		require.NoError(t, r.Complete(ctx, s))
	}
	complete("a", day.Add(9*time.Hour), 1, 1)
	complete("b", day.Add(11*time.Hour), 0, 2)
	complete("outside", day.Add(-time.Hour), 5, 5)
	require.NoError(t, r.Start(ctx, sampleFocus("running", "", day.Add(15*time.Hour))))

	list, err := r.ListRange(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "running", list[0].ID)

	st, err := r.Stats(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, model.FocusStats{
		Sessions:          3,
		CompletedSessions: 2,
		TotalSeconds:      3000,
		Interruptions:     1,
		Pomodoros:         4,
	}, st)

	empty, err := r.Stats(ctx, day.AddDate(1, 0, 0), day.AddDate(1, 0, 1))
	require.NoError(t, err)
	require.Equal(t, model.FocusStats{}, empty)
}
