package app

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_qr_tracker/config"
	"Gin_postgres_redis_qr_tracker/db"
	"Gin_postgres_redis_qr_tracker/logger"
	"Gin_postgres_redis_qr_tracker/metrics"
	"Gin_postgres_redis_qr_tracker/session"
	"Gin_postgres_redis_qr_tracker/tracker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖，生命周期归 main 所有
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client
	Config   *config.Config
	Log      *zap.Logger
	Engine   *tracker.Engine
	Registry *prometheus.Registry
	Metrics  *metrics.Recorder

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

// New wires an App around already opened connections.
func New(cfg *config.Config, log *zap.Logger, dbConn *gorm.DB, rdb *redis.Client) *App {
	if log == nil {
		log = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	engine := tracker.New(db.NewRepo(dbConn), logger.Named(log, "svc.tracker"),
		tracker.WithNameFallback(cfg.ItemNameFallback),
		tracker.WithMetrics(rec),
	)

	// --- Gin ---
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger.Named(log, "router")))
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg, Log: log,
		Engine: engine, Registry: reg, Metrics: rec,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
}

// Connect opens the database and Redis and wires the App.
func Connect(cfg *config.Config, log *zap.Logger) (*App, error) {
	// --- DB ---
	dbConn, err := db.ConnectDB(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	return New(cfg, log, dbConn, rdb), nil
}

func MustNew(cfg *config.Config, log *zap.Logger) *App {
	a, err := Connect(cfg, log)
	if err != nil {
		log.Fatal("failed to init app", zap.Error(err))
	}
	return a
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
