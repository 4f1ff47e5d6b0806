// Package cache provides a Redis cache-aside layer for derived dashboard
// stats. Recomputation is cheap but frequent; the cache absorbs dashboard
// polling between change-feed invalidations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fitmetrics/internal/domain"
)

// DefaultTTL bounds staleness when an invalidation signal is missed.
const DefaultTTL = 60 * time.Second

const dashboardKey = "fitmetrics:stats:dashboard"

// StatsCache caches the serialized dashboard stats.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a stats cache. ttl <= 0 falls back to DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Get returns the cached stats, or ok=false on a miss.
func (c *StatsCache) Get(ctx context.Context) (*domain.DashboardStats, bool, error) {
	data, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached stats: %w", err)
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		// Treat a corrupt entry as a miss; the caller recomputes and overwrites
		return nil, false, nil
	}
	return &stats, true, nil
}

// Set stores the stats with the configured TTL.
func (c *StatsCache) Set(ctx context.Context, stats *domain.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	if err := c.client.Set(ctx, dashboardKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached stats: %w", err)
	}
	return nil
}

// Invalidate drops the cached stats. Missing key is not an error.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, dashboardKey).Err(); err != nil {
		return fmt.Errorf("invalidate cached stats: %w", err)
	}
	return nil
}
