package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/salesboard/internal/app"
	"github.com/odyssey-erp/salesboard/internal/platform/cache"
	"github.com/odyssey-erp/salesboard/internal/sales"
	"github.com/odyssey-erp/salesboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("load timezone", slog.Any("error", err))
		os.Exit(1)
	}
	biz, err := cfg.Business()
	if err != nil {
		logger.Error("business config", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	stores, err := app.OpenStores(ctx, cfg, logger, time.Now().In(loc))
	if err != nil {
		logger.Error("open stores", slog.Any("error", err))
		os.Exit(1)
	}
	defer stores.Close()

	dashboardCache := sales.NewCache(redisClient, cfg.DashboardCacheTTL)
	service, err := sales.NewService(biz, stores.Stores, dashboardCache, loc)
	if err != nil {
		logger.Error("init sales service", slog.Any("error", err))
		os.Exit(1)
	}
	service.WithLogger(logger)

	warmupJob := jobs.NewDashboardWarmupJob(service, logger, nil)
	invalidateJob := &jobs.DashboardInvalidateJob{Cache: dashboardCache, Logger: logger}

	currentTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{Trailing: 1})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	trailingTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{Trailing: 2})
	if err != nil {
		logger.Error("build trailing warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		Logger:    logger,
		Location:  loc,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskDashboardInvalidate, Handler: invalidateJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: currentTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
			{Spec: "15 0 * * *", Task: trailingTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
