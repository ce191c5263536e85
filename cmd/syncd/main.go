// cmd/syncd/main.go
//
// Sync daemon: exposes trigger endpoints for stock reconciliation and,
// when SYNC_INTERVAL_MINUTES is set, runs a full sync on that schedule.
// Kept separate from the API server so the back office can run it close
// to the ERP on its own uptime.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/cache"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/config"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/erp"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/repository/postgres"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/service"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/stocksync"
	"github.com/LuanMAndrade/sistema-seja-sua/pkg/logger"
)

type daemon struct {
	syncService *service.StockSyncService
}

func (d *daemon) registerRoutes(r *mux.Router) {
	r.HandleFunc("/sync/run", d.runAll).Methods("POST")
	r.HandleFunc("/sync/collections/{id:[0-9]+}", d.runCollection).Methods("POST")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}

func (d *daemon) runAll(w http.ResponseWriter, r *http.Request) {
	result, err := d.syncService.SyncAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (d *daemon) runCollection(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid collection id", http.StatusBadRequest)
		return
	}

	result, err := d.syncService.SyncCollection(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logger.SetLevel(level)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	planCache, err := cache.NewPlanCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("plan cache unavailable, continuing without invalidation")
		planCache = cache.NewNoopPlanCache()
	}

	engine := stocksync.NewEngine(erp.NewClient(cfg.ERP), postgres.NewCatalogRepository(db), stocksync.Options{
		Workers: cfg.Sync.Workers,
	})
	d := &daemon{syncService: service.NewStockSyncService(engine, planCache)}

	r := mux.NewRouter()
	d.registerRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sync.IntervalMinutes > 0 {
		interval := time.Duration(cfg.Sync.IntervalMinutes) * time.Minute
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-rootCtx.Done():
					return
				case <-ticker.C:
					if _, err := d.syncService.SyncAll(rootCtx); err != nil {
						logger.Log.Error().Err(err).Msg("scheduled sync failed")
					}
				}
			}
		}()
		logger.Log.Info().Dur("interval", interval).Msg("scheduled sync enabled")
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("sync daemon starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start sync daemon")
		}
	}()

	<-rootCtx.Done()
	logger.Log.Info().Msg("shutting down sync daemon...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("sync daemon forced to shutdown")
	}
}
