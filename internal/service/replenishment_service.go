package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/cache"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/replenishment"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/repository"
)

// ReplenishmentService generates replenishment plans from the current catalog
// state and the trailing sales window, caching results per window length.
type ReplenishmentService struct {
	repo         repository.PlannerRepository
	cache        cache.PlanCache
	windowDays   int
	minimumStock int
}

func NewReplenishmentService(repo repository.PlannerRepository, cacheImpl cache.PlanCache, windowDays, minimumStock int) *ReplenishmentService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPlanCache()
	}
	if windowDays <= 0 {
		windowDays = replenishment.DefaultWindowDays
	}
	if minimumStock < 0 {
		minimumStock = replenishment.DefaultMinimumStock
	}
	return &ReplenishmentService{
		repo:         repo,
		cache:        cacheImpl,
		windowDays:   windowDays,
		minimumStock: minimumStock,
	}
}

// WindowDays is the configured default sales window.
func (s *ReplenishmentService) WindowDays() int {
	return s.windowDays
}

// GeneratePlan computes the plan for the given window, serving a cached plan
// when one is still valid. windowDays <= 0 falls back to the configured
// default.
func (s *ReplenishmentService) GeneratePlan(ctx context.Context, windowDays int) (*replenishment.Plan, error) {
	if windowDays <= 0 {
		windowDays = s.windowDays
	}

	if plan, ok, err := s.cache.GetPlan(ctx, windowDays); err == nil && ok {
		return plan, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("replenishment: cache get plan failed")
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, -windowDays)

	input, err := s.repo.PlanSnapshot(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	input.MinimumStock = s.minimumStock

	plan, err := replenishment.Generate(*input)
	if err != nil {
		return nil, err
	}
	plan.WindowDays = windowDays
	plan.GeneratedAt = now

	if err := s.cache.SetPlan(ctx, windowDays, plan); err != nil {
		log.Warn().Err(err).Msg("replenishment: cache set plan failed")
	}

	log.Info().
		Int("window_days", windowDays).
		Int("pieces", len(plan.Pieces)).
		Int("total_units", plan.TotalUnits).
		Str("total_cost", plan.TotalCost.StringFixed(2)).
		Msg("replenishment plan generated")

	return plan, nil
}
