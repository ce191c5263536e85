package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/config"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/replenishment"
)

const (
	planKeyPrefix     = "replenishment:plan"
	planScanBatchSize = 100
)

// PlanCache caches generated replenishment plans keyed by window length.
// A stock sync invalidates everything: the plan depends on current stock.
type PlanCache interface {
	GetPlan(ctx context.Context, windowDays int) (*replenishment.Plan, bool, error)
	SetPlan(ctx context.Context, windowDays int, plan *replenishment.Plan) error
	InvalidateAll(ctx context.Context) error
}

type redisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPlanCache struct{}

func NewPlanCache(cfg config.CacheConfig) (PlanCache, error) {
	if !cfg.Enabled {
		return &noopPlanCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPlanCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopPlanCache() PlanCache {
	return &noopPlanCache{}
}

func (c *redisPlanCache) GetPlan(ctx context.Context, windowDays int) (*replenishment.Plan, bool, error) {
	payload, err := c.client.Get(ctx, buildPlanKey(windowDays)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var plan replenishment.Plan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, false, fmt.Errorf("decode plan cache: %w", err)
	}

	return &plan, true, nil
}

func (c *redisPlanCache) SetPlan(ctx context.Context, windowDays int, plan *replenishment.Plan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan cache: %w", err)
	}

	if err := c.client.Set(ctx, buildPlanKey(windowDays), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPlanCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, planKeyPrefix, planScanBatchSize)
}

func (n *noopPlanCache) GetPlan(ctx context.Context, windowDays int) (*replenishment.Plan, bool, error) {
	return nil, false, nil
}

func (n *noopPlanCache) SetPlan(ctx context.Context, windowDays int, plan *replenishment.Plan) error {
	return nil
}

func (n *noopPlanCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildPlanKey(windowDays int) string {
	return fmt.Sprintf("%s:%d", planKeyPrefix, windowDays)
}
