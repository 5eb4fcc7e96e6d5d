package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recordhub/records-system/internal/core/domain"
)

const statsKey = "dashboard:stats"

// StatsCache stores the dashboard payload as JSON for a fixed TTL.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Get returns nil, nil on a cache miss.
func (c *StatsCache) Get(ctx context.Context) (*domain.DashboardStats, error) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stats cache: %w", err)
	}
	var s domain.DashboardStats
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode stats cache: %w", err)
	}
	return &s, nil
}

func (c *StatsCache) Set(ctx context.Context, s *domain.DashboardStats) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode stats cache: %w", err)
	}
	if err := c.client.Set(ctx, statsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write stats cache: %w", err)
	}
	return nil
}
