package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	exists, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), -time.Second))

	_, err := mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	exists, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	_, err := mc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheClearByPrefix(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "queue:a:vitals:1", []byte("x"), time.Minute))
	require.NoError(t, mc.Set(ctx, "queue:a:lab:2", []byte("y"), time.Minute))
	require.NoError(t, mc.Set(ctx, "webhook:seen:txn_1", []byte("1"), time.Minute))

	require.NoError(t, mc.Clear(ctx, "queue:a:*"))

	_, err := mc.Get(ctx, "queue:a:vitals:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get(ctx, "webhook:seen:txn_1")
	assert.NoError(t, err)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "queue:c1:vitals:abc", QueueKey("c1", "vitals", "abc"))
	assert.Equal(t, "webhook:seen:txn_1", WebhookSeenKey("txn_1"))
}
