package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wellnest/wellnest/internal/errs"
)

func TestReporter_ReportClassifiesAndRecords(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink, pres := &fakeErrorLog{}, &fakePresenter{}
	r := NewReporter(zap.New(core), sink, pres)

	err := r.Report(context.Background(), "tasks.add", fmt.Errorf("insert task: %w", errors.New("network unreachable")))
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.CodeNetwork, e.Code)
	require.Equal(t, "tasks.add", e.Op)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	require.Equal(t, "NETWORK", rec.Code)
	require.Equal(t, "tasks.add", rec.Op)
	require.Contains(t, rec.Detail, "network unreachable")
	require.NotEmpty(t, rec.ID)

	require.Len(t, pres.shown, 1)
	require.Equal(t, "Heads up", pres.shown[0].Title)
	require.Equal(t, errs.CodeNetwork.Message(), pres.shown[0].Body)

	entries := logs.FilterMessage("store operation rejected").All()
	require.Len(t, entries, 1)
	require.Equal(t, "tasks.add", entries[0].ContextMap()["op"])
}

func TestReporter_FatalSeverity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pres := &fakePresenter{}
	r := NewReporter(zap.New(core), nil, pres)

	err := r.Report(context.Background(), "meditation.end", errDisk)
	require.Equal(t, errs.CodeUnknown, errs.Classify(err).Code)
	require.Equal(t, "Something went wrong", pres.shown[0].Title)
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestReporter_BrokenSinkDoesNotMaskError(t *testing.T) {
	sink := &fakeErrorLog{appendErr: errors.New("disk full")}
	r := NewReporter(nil, sink, nil)

	err := r.Report(context.Background(), "focus.start", errs.ErrConflict)
	require.ErrorIs(t, err, errs.ErrConflict)
	require.Equal(t, errs.CodeConflict, errs.Classify(err).Code)
}

func TestReporter_NilCases(t *testing.T) {
	r := NewReporter(nil, nil, nil)
	require.NoError(t, r.Report(context.Background(), "x", nil))

	var nilReporter *Reporter
	err := nilReporter.Report(context.Background(), "tasks.get", errs.ErrNotFound)
	require.Equal(t, errs.CodeNotFound, errs.Classify(err).Code)
}

func TestReporter_AlreadyClassifiedPassesThrough(t *testing.T) {
	r := NewReporter(nil, nil, nil)
	first := r.Report(context.Background(), "inner", errs.Validation("bad"))
	second := r.Report(context.Background(), "outer", first)
	require.Same(t, first, second)
}
