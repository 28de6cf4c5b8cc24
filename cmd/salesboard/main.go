package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/salesboard/cmd/salesboard/cli"
	"github.com/odyssey-erp/salesboard/internal/app"
	"github.com/odyssey-erp/salesboard/internal/live"
	livehttp "github.com/odyssey-erp/salesboard/internal/live/http"
	"github.com/odyssey-erp/salesboard/internal/observability"
	"github.com/odyssey-erp/salesboard/internal/platform/cache"
	"github.com/odyssey-erp/salesboard/internal/sales"
	saleshttp "github.com/odyssey-erp/salesboard/internal/sales/http"
	"github.com/odyssey-erp/salesboard/internal/store/memory"
	"github.com/odyssey-erp/salesboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobs(ctx, cfg, os.Args[2:]))
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

	stores, err := app.OpenStores(ctx, cfg, logger, time.Now().In(loc))
	if err != nil {
		logger.Error("open stores", slog.Any("error", err))
		os.Exit(1)
	}
	defer stores.Close()

	for i, store := range stores.Memory {
		go memory.Simulate(ctx, store, 45*time.Second, func() time.Time { return time.Now().In(loc) }, uint64(100+i))
	}

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		logger.Warn("redis unavailable, running without dashboard cache and alert fan-out", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		stores.Health["redis"] = app.HealthFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	dashboardCache := sales.NewCache(redisClient, cfg.DashboardCacheTTL)
	if err := dashboardCache.ListenForInvalidation(ctx, func(version int64) {
		logger.Info("dashboard cache invalidated", slog.Int64("version", version))
	}); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	service, err := sales.NewService(biz, stores.Stores, dashboardCache, loc)
	if err != nil {
		logger.Error("init sales service", slog.Any("error", err))
		os.Exit(1)
	}
	service.WithLogger(logger)
	metrics := observability.NewMetrics()

	siteNames := make([]string, 0, len(service.Sites()))
	for _, site := range service.Sites() {
		siteNames = append(siteNames, site.Name)
	}
	snapshotter := live.NewStoreSnapshotter(service.Sites(), loc)
	feed := live.NewFeed(live.DefaultFeedSize)
	publisher := live.NewRedisPublisher(redisClient)

	if cfg.PollEnabled {
		sinks := live.Sinks{feed}
		if publisher != nil {
			sinks = append(sinks, publisher)
		}
		poller := live.NewPoller(
			live.PollerConfig{Sites: siteNames, Interval: cfg.PollInterval},
			snapshotter,
			live.NewDetector(),
			live.NewAnnouncer(language.Make(cfg.AlertLocale)),
			sinks,
			metrics.Jobs(),
			logger,
		)
		go poller.Run(ctx)
	} else if publisher != nil {
		go func() {
			err := publisher.Subscribe(ctx, func(alert live.Alert) {
				_ = feed.Publish(ctx, []live.Alert{alert})
			})
			if err != nil {
				logger.Warn("alert subscription", slog.Any("error", err))
			}
		}()
	}

	var inspector jobs.QueueInspector
	if redisClient != nil {
		asynqInspector := asynq.NewInspector(redisOpts(cfg))
		defer func() {
			if err := asynqInspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		inspector = asynqInspector
	}

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		SalesHandler: saleshttp.NewHandler(logger, service, snapshotter, siteNames),
		LiveHandler:  livehttp.NewHandler(logger, feed),
		JobHandler:   jobs.NewHandler(inspector, logger),
		Health:       stores.Health,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	jobsCLI := cli.NewJobsCLI(redisOpts(cfg))
	defer func() { _ = jobsCLI.Close() }()
	if err := jobsCLI.Run(ctx, args, os.Stdout); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, cli.Usage)
			return 2
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func redisOpts(cfg *app.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
}
