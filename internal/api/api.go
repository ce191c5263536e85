// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/api/handlers"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/api/middleware"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/service"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/storage"
)

type Services struct {
	Catalog       *service.CatalogService
	Replenishment *service.ReplenishmentService
	StockSync     *service.StockSyncService
	ReportStore   storage.ObjectStorage
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(gin.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Catalog != nil {
			catalogHandler := handlers.NewCatalogHandler(services.Catalog)
			apiGroup.GET("/collections", catalogHandler.GetCollections)
			piecesGroup := apiGroup.Group("/pieces")
			{
				piecesGroup.GET("", catalogHandler.GetPieces)
				piecesGroup.GET("/:id", catalogHandler.GetPiece)
				piecesGroup.GET("/:id/movements", catalogHandler.GetPieceMovements)
			}
		}

		if services.Replenishment != nil {
			replenishmentHandler := handlers.NewReplenishmentHandler(services.Replenishment, services.ReportStore)
			replenishmentGroup := apiGroup.Group("/replenishment")
			{
				replenishmentGroup.GET("/plan", replenishmentHandler.GetPlan)
				replenishmentGroup.GET("/plan/export", replenishmentHandler.ExportPlanCSV)
			}
		}

		if services.StockSync != nil {
			syncHandler := handlers.NewSyncHandler(services.StockSync)
			syncGroup := apiGroup.Group("/sync")
			{
				syncGroup.POST("/run", syncHandler.RunAll)
				syncGroup.POST("/collections/:id", syncHandler.RunCollection)
				syncGroup.POST("/pieces/:id", syncHandler.RunPiece)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
