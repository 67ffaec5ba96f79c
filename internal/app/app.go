package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ametelkin/pr-notify/internal/alert"
	"github.com/ametelkin/pr-notify/internal/config"
	"github.com/ametelkin/pr-notify/internal/httpserver"
	"github.com/ametelkin/pr-notify/internal/indicator"
	"github.com/ametelkin/pr-notify/internal/migrations"
	"github.com/ametelkin/pr-notify/internal/notifier"
	"github.com/ametelkin/pr-notify/internal/repository"
	"github.com/ametelkin/pr-notify/internal/service"
	"github.com/ametelkin/pr-notify/internal/slack"
	"github.com/ametelkin/pr-notify/internal/storage/postgres"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	httpServer *httpserver.Server
	db         *pgxpool.Pool
	svc        *service.Service
	cron       *cron.Cron
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	db, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	if err := migrations.Run(ctx, cfg.DatabaseURL, logger); err != nil {
		db.Close()
		return nil, err
	}

	repo := repository.New(db)
	svc := service.New(repo)

	status := &indicator.Indicator{}
	alerter := alert.NewDesktop(alert.Permission(cfg.AlertPermission))
	chat := slack.NewClient(cfg.SlackAPIURL)
	dispatcher := notifier.New(svc, alerter, chat, status, logger)

	server := httpserver.New(cfg.HTTPPort, logger, svc, dispatcher, status)

	a := &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: server,
		db:         db,
		svc:        svc,
	}
	a.cron = a.newSnoozeSweep()

	return a, nil
}

func (a *App) newSnoozeSweep() *cron.Cron {
	c := cron.New()
	c.Schedule(cron.Every(a.cfg.SnoozeSweepEvery), cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		pruned, err := a.svc.PruneExpiredSnoozes(ctx)
		if err != nil {
			a.logger.Error("prune expired snoozes", zap.Error(err))
			return
		}
		if pruned > 0 {
			a.logger.Info("pruned expired snoozes", zap.Int64("count", pruned))
		}
	}))
	return c
}

func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.cron.Start()
	defer a.cron.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.httpServer.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			return err
		}

		return <-errCh
	case err := <-errCh:
		return err
	}
}
