package app

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/freshtrack-backend/internal/actor"
	"github.com/yungbote/freshtrack-backend/internal/db"
	"github.com/yungbote/freshtrack-backend/internal/handlers"
	"github.com/yungbote/freshtrack-backend/internal/kv"
	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/middleware"
	"github.com/yungbote/freshtrack-backend/internal/server"
	"github.com/yungbote/freshtrack-backend/internal/services"
	"github.com/yungbote/freshtrack-backend/internal/store"
)

type App struct {
	Log     *logger.Logger
	Cfg     Config
	Router  *gin.Engine
	Tracker services.TrackerService
	Manager *actor.Manager
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	kvStore, err := openKV(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	registry := store.NewSessionRegistry(kvStore, log)
	activities := store.NewActivityStore(kvStore, log)
	manager := actor.NewManager(registry, activities, log)
	tracker := services.NewTrackerService(registry, activities, manager, log)

	sessionHandler := handlers.NewSessionHandler(log, tracker)
	activityHandler := handlers.NewActivityHandler(log, tracker)
	streamHandler := handlers.NewStreamHandler(log, tracker, time.Duration(cfg.StreamHeartbeatS)*time.Second)
	authMiddleware := middleware.NewAuthMiddleware(log, cfg.JWTSecretKey)

	router := server.NewRouter(server.RouterConfig{
		ServiceName:     cfg.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		AuthMiddleware:  authMiddleware,
		SessionHandler:  sessionHandler,
		ActivityHandler: activityHandler,
		StreamHandler:   streamHandler,
	})

	return &App{
		Log:     log,
		Cfg:     cfg,
		Router:  router,
		Tracker: tracker,
		Manager: manager,
	}, nil
}

func openKV(cfg Config, log *logger.Logger) (kv.Store, error) {
	switch cfg.KVBackend {
	case "redis":
		return kv.NewRedisStore(log, cfg.RedisAddr)
	case "postgres":
		pg, err := db.NewPostgresService(log)
		if err != nil {
			return nil, err
		}
		if err := pg.AutoMigrateAll(); err != nil {
			return nil, err
		}
		return kv.NewGormStore(pg.DB(), log)
	case "memory", "":
		log.Warn("Using in-memory KV store; data will not survive restarts")
		return kv.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown KV backend %q", cfg.KVBackend)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Manager != nil {
		a.Manager.Shutdown()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
