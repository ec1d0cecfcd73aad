package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"

	"taskboard/internal/bot"
	"taskboard/internal/config"
	httpapi "taskboard/internal/http"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

const (
	version       = "1.0.0"
	reportTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", "err", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, subscribers, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("store", "driver", cfg.StoreDriver, "err", err)
	}
	tasks := repository.NewInstrumented(store)

	taskSvc := service.NewTaskService(tasks)
	categorySvc := service.NewCategoryService(tasks)
	reminderSvc := service.NewReminderService(tasks)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(taskSvc, categorySvc, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server started", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "err", err)
		}
	}()

	var telegramBot *bot.Bot
	if cfg.BotEnabled() {
		telegramBot, err = bot.New(cfg.TelegramToken, taskSvc, categorySvc, reminderSvc, subscribers)
		if err != nil {
			logger.Fatal("bot", "err", err)
		}
		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("bot stopped with error", "err", err)
			}
		}()
	} else {
		logger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	scheduler := service.NewSchedulerService(time.Local)
	if telegramBot != nil && cfg.ReportsEnabled() {
		if err := scheduleReports(ctx, scheduler, cfg, telegramBot); err != nil {
			logger.Fatal("schedule reports", "err", err)
		}
		scheduler.Start()
	}

	operations := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			logger.Info("shutting down http server")
			return srv.Shutdown(ctx)
		},
		"scheduler": func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	}
	if telegramBot != nil {
		operations["telegram-bot"] = func(ctx context.Context) error {
			telegramBot.Stop()
			return nil
		}
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, operations)
	exitCode := <-wait

	cancel()
	closeStore()
	logger.Info("shutdown complete", "code", exitCode)
	os.Exit(exitCode)
}

// openStore builds the configured task and subscriber stores. Tasks start from the bundled
// seed data.
func openStore(ctx context.Context, cfg config.Config) (repository.TaskStore, repository.SubscriberStore, func(), error) {
	seed, err := repository.SeedTasks()
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.StoreDriver == config.DriverSQLite {
		db, err := repository.NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewTaskRepository(db)
		if err := repo.Seed(ctx, seed); err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, err
		}
		return repo, repository.NewSubscriberRepository(db), func() {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("close database", "err", err)
			}
		}, nil
	}

	var opts []repository.MemoryOption
	if cfg.SimulateLatency {
		opts = append(opts, repository.WithLatency(repository.DefaultLatency()))
	}
	return repository.NewMemoryStore(seed, opts...), repository.NewMemorySubscribers(), func() {}, nil
}

// scheduleReports registers the digest job. A daily time wins over an interval.
func scheduleReports(ctx context.Context, scheduler *service.SchedulerService, cfg config.Config, telegramBot *bot.Bot) error {
	job := func() {
		jobCtx, cancel := context.WithTimeout(ctx, reportTimeout)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("daily report", "err", err)
		}
	}

	if cfg.ReportDailyAt != "" {
		if _, err := scheduler.ScheduleDaily(cfg.ReportDailyAt, job); err != nil {
			return err
		}
		logger.Info("daily report scheduled", "at", cfg.ReportDailyAt)
		return nil
	}
	if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, job); err != nil {
		return err
	}
	logger.Info("report interval scheduled", "every", cfg.ReportInterval)
	return nil
}
