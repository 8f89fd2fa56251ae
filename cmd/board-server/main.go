package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/TomRob62/GSSDA-Web-App/api/swagger"
	"github.com/TomRob62/GSSDA-Web-App/internal/handler"
	"github.com/TomRob62/GSSDA-Web-App/internal/middleware"
	"github.com/TomRob62/GSSDA-Web-App/internal/realtime"
	"github.com/TomRob62/GSSDA-Web-App/internal/repository"
	"github.com/TomRob62/GSSDA-Web-App/internal/service"
	"github.com/TomRob62/GSSDA-Web-App/pkg/cache"
	"github.com/TomRob62/GSSDA-Web-App/pkg/config"
	"github.com/TomRob62/GSSDA-Web-App/pkg/database"
	"github.com/TomRob62/GSSDA-Web-App/pkg/logger"
	corsmiddleware "github.com/TomRob62/GSSDA-Web-App/pkg/middleware/cors"
	reqidmiddleware "github.com/TomRob62/GSSDA-Web-App/pkg/middleware/requestid"
)

// @title GSSDA Board Service
// @version 0.1.0
// @description Room display boards for square dance events
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, running without shared cache", "error", err)
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cacheRepo != nil)

	roomRepo := repository.NewRoomRepository(db)
	callerRepo := repository.NewCallerRepository(db)
	eventRepo := repository.NewEventRepository(db)
	mcRepo := repository.NewMCRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	scheduleCache := service.NewScheduleCache(eventRepo, mcRepo, nil, metrics, logr)
	catalogSvc := service.NewCatalogService(profileRepo, cacheSvc, cfg.Catalog, nil, metrics, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(logr, metrics)
	registry := service.NewBoardRegistry(ctx, cfg, scheduleCache, catalogSvc, roomRepo, callerRepo, hub, nil, metrics, logr)
	hub.SetRoomWatchHandler(registry.HandleWatch)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	roomHandler := handler.NewRoomHandler(roomRepo)
	boardHandler := handler.NewBoardHandler(registry)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.GET("/rooms", roomHandler.List)
	api.GET("/rooms/:id", roomHandler.Get)
	api.GET("/rooms/:id/board", boardHandler.Get)
	api.PUT("/rooms/:id/board/options", boardHandler.UpdateOptions)
	api.POST("/rooms/:id/board/refresh", boardHandler.Refresh)

	r.GET("/ws/board", realtime.ServeWs(hub, registry, logr))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	registry.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown failed", zap.Error(err))
	}
}
