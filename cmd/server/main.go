// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/api"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/cache"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/config"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/erp"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/repository/postgres"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/service"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/stocksync"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/storage"
	"github.com/LuanMAndrade/sistema-seja-sua/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	planCache, err := cache.NewPlanCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("plan cache unavailable, continuing without caching")
		planCache = cache.NewNoopPlanCache()
	}

	catalogRepo := postgres.NewCatalogRepository(db)
	plannerRepo := postgres.NewPlannerRepository(db)

	engine := stocksync.NewEngine(erp.NewClient(cfg.ERP), catalogRepo, stocksync.Options{
		Workers: cfg.Sync.Workers,
	})

	var reportStore storage.ObjectStorage
	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("report storage unavailable, exports stay local")
		} else {
			reportStore = store
		}
	}

	services := &api.Services{
		Catalog:       service.NewCatalogService(catalogRepo),
		Replenishment: service.NewReplenishmentService(plannerRepo, planCache, cfg.Planner.WindowDays, cfg.Planner.MinimumStock),
		StockSync:     service.NewStockSyncService(engine, planCache),
		ReportStore:   reportStore,
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}
