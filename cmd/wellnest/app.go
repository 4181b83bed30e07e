package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/wellnest/wellnest/internal/config"
	"github.com/wellnest/wellnest/internal/model"
	"github.com/wellnest/wellnest/internal/repository/kvstore"
	"github.com/wellnest/wellnest/internal/repository/sqlstore"
	"github.com/wellnest/wellnest/internal/service"
)

// app holds the wired stores for one command invocation.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *sqlstore.DB
	kv  *kvstore.Store

	errorLog   *sqlstore.ErrorLogRepo
	settings   *service.SettingsServiceImpl
	tasks      *service.TaskServiceImpl
	focus      *service.FocusServiceImpl
	meditation *service.MeditationServiceImpl
	journal    *service.JournalServiceImpl
}

// openApp loads configuration, opens both stores, wires the services and loads their state.
func openApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("opening stores",
		zap.String("version", version),
		zap.String("driver", cfg.Driver),
		zap.String("kv", cfg.KVDir),
	)

	db, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	kv, err := kvstore.New(cfg.KVDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{cfg: cfg, log: logger, db: db, kv: kv, errorLog: sqlstore.NewErrorLogRepo(db)}
	rep := service.NewReporter(logger, a.errorLog, consolePresenter{w: out})
	a.settings = service.NewSettingsService(kv, rep, logger.Named("settings"))
	a.tasks = service.NewTaskService(sqlstore.NewTaskRepo(db), rep, logger.Named("tasks"), cfg.Locale)
	a.focus = service.NewFocusService(sqlstore.NewFocusRepo(db), a.settings, rep, logger.Named("focus"), cfg.Location)
	a.meditation = service.NewMeditationService(sqlstore.NewMeditationRepo(db), kv, a.settings, nil, rep,
		logger.Named("meditation"), cfg.Location)
	a.journal = service.NewJournalService(sqlstore.NewJournalRepo(db), nil, rep, logger.Named("journal"),
		cfg.JournalWindow(), cfg.Location)

	if _, err := a.settings.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	loaders := []func(context.Context) error{a.tasks.Load, a.focus.Load, a.meditation.Load, a.journal.Load}
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) Close() {
	a.meditation.Close()
	if err := a.db.Close(); err != nil {
		a.log.Warn("close database", zap.Error(err))
	}
	_ = a.log.Sync()
}

// consolePresenter prints store notifications to the terminal.
type consolePresenter struct{ w io.Writer }

func (p consolePresenter) Present(_ context.Context, n model.Notification) error {
	title := color.New(color.FgYellow, color.Bold)
	_, err := fmt.Fprintf(p.w, "%s %s\n", title.Sprint(n.Title+":"), n.Body)
	return err
}
