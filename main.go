package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Gin_postgres_redis_qr_tracker/app"
	"Gin_postgres_redis_qr_tracker/config"
	"Gin_postgres_redis_qr_tracker/logger"
	"Gin_postgres_redis_qr_tracker/routes"
	"Gin_postgres_redis_qr_tracker/scheduler"

	"go.uber.org/zap"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		panic(err)
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	application := app.MustNew(cfg, baseLogger)
	defer application.Close()

	if _, err := app.BootstrapFirstAdmin(context.Background(), cfg.BootstrapAdminName, application.Engine, baseLogger.Named("bootstrap")); err != nil {
		baseLogger.Error("bootstrap admin failed", zap.Error(err))
	}

	routes.RegisterRoutes(application.Router, application)

	sched := scheduler.NewScheduler(cfg.OverdueReportCron, cfg.OverdueAfter, application.Engine, application.Metrics, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      application.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
