// Package app wires configuration, storage, middleware and the HTTP router
// into a runnable server.
package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/taskboard/server/internal/model"
	"github.com/taskboard/server/internal/module/authz"
	"github.com/taskboard/server/internal/module/resource"
	"github.com/taskboard/server/internal/module/throttle"
	"github.com/taskboard/server/internal/module/workspace"
	"github.com/taskboard/server/internal/shared/cache"
	"github.com/taskboard/server/internal/shared/config"
	"github.com/taskboard/server/internal/shared/database"
	"github.com/taskboard/server/internal/shared/logger"
	"github.com/taskboard/server/internal/shared/metrics"
	"github.com/taskboard/server/internal/shared/middleware"
)

// App holds the assembled server components.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *gorm.DB
	redis  redis.UniversalClient
	router *gin.Engine
}

// New builds the application from configuration.
func New(cfg *config.Config) (*App, error) {
	log, err := newZapLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Workspace{},
		&model.Membership{},
		&model.Task{},
		&model.File{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Throttle counters live in Redis when configured so every instance
	// shares one window; otherwise they are process-local.
	var (
		redisClient redis.UniversalClient
		store       throttle.Store
	)
	if cfg.Redis.Address != "" {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = throttle.NewRedisStore(redisClient, log)
	} else {
		log.Warn("redis not configured, using process-local throttle counters")
		store = throttle.NewMemoryStore()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	auditLog := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	audit := authz.NewLogSink(auditLog)

	sensitiveLimiter := throttle.New(store, cfg.RateLimit.SensitiveMaxAttempts, cfg.RateLimit.SensitiveWindow)

	wsRepo := workspace.NewRepository(db)
	wsService := workspace.NewService(wsRepo, audit, log.Named("workspace"))
	wsHandler := workspace.NewHandler(wsService)

	resRepo := resource.NewRepository(db)
	resService := resource.NewService(resRepo, wsRepo, sensitiveLimiter, audit, m, log.Named("resource"))
	resHandler := resource.NewHandler(resService)

	verifier := middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.Metrics(m))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(throttle.GeneralAPI(store), m, "general"))
	api.Use(middleware.RequireAuth(verifier))
	api.Use(middleware.WorkspaceContext(false))

	wsHandler.RegisterRoutes(api)
	resHandler.RegisterRoutes(api)

	return &App{
		cfg:    cfg,
		log:    log,
		db:     db,
		redis:  redisClient,
		router: router,
	}, nil
}

// Router returns the HTTP handler.
func (a *App) Router() http.Handler {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.log
}

// Stop releases storage connections.
func (a *App) Stop() {
	if a.redis != nil {
		if err := cache.Close(a.redis); err != nil {
			a.log.Warn("close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.log.Warn("close database", zap.Error(err))
	}
	_ = a.log.Sync()
}

func newZapLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "text" {
		zcfg.Encoding = "console"
	}
	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}
