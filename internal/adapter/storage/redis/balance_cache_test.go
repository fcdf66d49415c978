package redis_test

import (
	"context"
	"testing"
	"time"

	"hedera-asset-gateway/internal/adapter/storage/redis"
	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewBalanceCache(client)
	ctx := context.Background()

	snapshot := &ports.BalanceSnapshot{
		AccountID:   "0.0.1001",
		Hbars:       "42.5 ℏ",
		Network:     domain.NetworkModeMainnet,
		RetrievedAt: time.Now().UTC().Truncate(time.Second),
	}

	err := cache.Set(ctx, snapshot, 30*time.Second)
	require.NoError(t, err)

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snapshot.AccountID, got.AccountID)
	assert.Equal(t, snapshot.Hbars, got.Hbars)
	assert.Equal(t, snapshot.Network, got.Network)
}

func TestBalanceCache_Miss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewBalanceCache(client)

	got, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got, "empty cache should return nil, nil")
}

func TestBalanceCache_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewBalanceCache(client)
	ctx := context.Background()

	snapshot := &ports.BalanceSnapshot{
		AccountID:   "0.0.1001",
		Hbars:       "10 ℏ",
		Network:     domain.NetworkModeTestnet,
		RetrievedAt: time.Now().UTC(),
	}

	require.NoError(t, cache.Set(ctx, snapshot, 5*time.Second))
	mr.FastForward(6 * time.Second)

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "expired snapshot should be a miss")
}
