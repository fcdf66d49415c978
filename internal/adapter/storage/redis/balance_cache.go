package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hedera-asset-gateway/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// BalanceCache implements ports.BalanceCache using Redis. One key holds the
// latest operator balance snapshot; the TTL bounds its staleness.
type BalanceCache struct {
	client *goredis.Client
	key    string
}

// NewBalanceCache creates a new Redis-backed balance cache.
func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		key:    "balance:operator",
	}
}

// Get retrieves the cached snapshot. Returns nil, nil when none is cached.
func (c *BalanceCache) Get(ctx context.Context) (*ports.BalanceSnapshot, error) {
	val, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis balance get: %w", err)
	}

	snapshot := &ports.BalanceSnapshot{}
	if err := json.Unmarshal(val, snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal balance snapshot: %w", err)
	}
	return snapshot, nil
}

// Set stores a snapshot with the given TTL.
func (c *BalanceCache) Set(ctx context.Context, snapshot *ports.BalanceSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal balance snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}
