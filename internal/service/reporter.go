package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wellnest/wellnest/internal/errs"
	"github.com/wellnest/wellnest/internal/model"
	"github.com/wellnest/wellnest/internal/repository"
)

// Reporter is the single exit for store failures: it classifies the error, logs it,
// appends it to the durable error log and hands a notification to the presenter.
type Reporter struct {
	log       *zap.Logger
	sink      repository.ErrorLogRepository
	presenter Presenter
	now       func() time.Time
}

// NewReporter constructs a Reporter. sink and presenter are optional.
func NewReporter(log *zap.Logger, sink repository.ErrorLogRepository, presenter Presenter) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{log: log, sink: sink, presenter: presenter, now: time.Now}
}

// Report classifies err under op and returns it as *errs.Error. A nil err returns nil.
func (r *Reporter) Report(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if r == nil {
		return errs.Wrap(op, err)
	}
	wrapped := errs.Wrap(op, err)
	var e *errs.Error
	if !errors.As(wrapped, &e) {
		return wrapped
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("code", string(e.Code)),
		zap.Error(err),
	}
	if e.Code.Severity() == errs.SeverityFatal {
		r.log.Error("store operation failed", fields...)
	} else {
		r.log.Warn("store operation rejected", fields...)
	}

	r.record(ctx, op, e)
	r.present(ctx, e)
	return wrapped
}

func (r *Reporter) record(ctx context.Context, op string, e *errs.Error) {
	if r.sink == nil {
		return
	}
	id, err := newID()
	if err != nil {
		r.log.Warn("error log id", zap.Error(err))
		return
	}
	detail := ""
	if e.Err != nil {
		detail = e.Err.Error()
	}
	rec := model.ErrorRecord{
		ID:        id,
		Code:      string(e.Code),
		Message:   e.Message,
		Detail:    detail,
		Op:        op,
		CreatedAt: r.now(),
	}
	// best-effort: a broken error log must not mask the original failure
	if err := r.sink.Append(ctx, rec); err != nil {
		r.log.Warn("append error log", zap.String("op", op), zap.Error(err))
	}
}

func (r *Reporter) present(ctx context.Context, e *errs.Error) {
	if r.presenter == nil {
		return
	}
	title := "Heads up"
	if e.Code.Severity() == errs.SeverityFatal {
		title = "Something went wrong"
	}
	if err := r.presenter.Present(ctx, model.Notification{Title: title, Body: e.Message}); err != nil {
		r.log.Debug("present notification", zap.Error(err))
	}
}
