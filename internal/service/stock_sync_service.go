package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/cache"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/stocksync"
)

// StockSyncService runs the reconciliation engine and keeps the plan cache
// honest: any sync that recorded movements invalidates every cached plan.
type StockSyncService struct {
	engine    *stocksync.Engine
	planCache cache.PlanCache
}

func NewStockSyncService(engine *stocksync.Engine, planCache cache.PlanCache) *StockSyncService {
	if planCache == nil {
		planCache = cache.NewNoopPlanCache()
	}
	return &StockSyncService{engine: engine, planCache: planCache}
}

func (s *StockSyncService) SyncAll(ctx context.Context) (*stocksync.BatchResult, error) {
	result, err := s.engine.SyncAll(ctx)
	if err != nil {
		return nil, err
	}
	s.invalidatePlans(ctx, result.Movements)
	return result, nil
}

func (s *StockSyncService) SyncCollection(ctx context.Context, collectionID int64) (*stocksync.BatchResult, error) {
	result, err := s.engine.SyncCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	s.invalidatePlans(ctx, result.Movements)
	return result, nil
}

func (s *StockSyncService) SyncPiece(ctx context.Context, pieceID int64) (*stocksync.PieceSyncResult, error) {
	result, err := s.engine.SyncPieceByID(ctx, pieceID)
	if err != nil {
		return nil, err
	}
	s.invalidatePlans(ctx, result.MovementsRecorded)
	return result, nil
}

func (s *StockSyncService) invalidatePlans(ctx context.Context, movements int) {
	if movements == 0 {
		return
	}
	if err := s.planCache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("stock sync: plan cache invalidation failed")
	}
}
