package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey("/recipes/complexSearch", map[string]string{"query": "pasta", "cuisine": "italian"})
	b := CacheKey("/recipes/complexSearch", map[string]string{"cuisine": "italian", "query": "pasta"})
	assert.Equal(t, a, b, "參數順序不應影響快取鍵")
	assert.Equal(t, "/recipes/complexSearch:cuisine=italian:query=pasta", a)
}

func TestCacheKeyDistinguishesParams(t *testing.T) {
	a := CacheKey("/recipes/complexSearch", map[string]string{"query": "pasta"})
	b := CacheKey("/recipes/complexSearch", map[string]string{"query": "ramen"})
	c := CacheKey("/recipes/random", map[string]string{"query": "pasta"})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestMemoryCacheHitWithinTTL(t *testing.T) {
	cache := NewMemoryCache(10, 1*time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "k1", []byte("v1"))

	value, ok := cache.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), value)
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemoryCache(10, 1*time.Minute)
	_, ok := cache.Get(context.Background(), "missing")
	assert.False(t, ok)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	cache := NewMemoryCache(10, 10*time.Millisecond)
	ctx := context.Background()

	cache.Set(ctx, "k1", []byte("v1"))
	time.Sleep(20 * time.Millisecond)

	_, ok := cache.Get(ctx, "k1")
	assert.False(t, ok, "過期條目不應命中")
	assert.Equal(t, 0, cache.Len(), "過期條目應被清除")
}

func TestMemoryCacheEvictsOldestWhenFull(t *testing.T) {
	cache := NewMemoryCache(3, 1*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cache.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"))
		time.Sleep(2 * time.Millisecond)
	}
	cache.Set(ctx, "k3", []byte("v"))

	assert.Equal(t, 3, cache.Len())
	_, ok := cache.Get(ctx, "k0")
	assert.False(t, ok, "最舊插入的條目應被淘汰")
	_, ok = cache.Get(ctx, "k3")
	assert.True(t, ok)
}

func TestMemoryCacheOverwriteSameKey(t *testing.T) {
	cache := NewMemoryCache(2, 1*time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "k1", []byte("old"))
	cache.Set(ctx, "k1", []byte("new"))

	value, ok := cache.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), value)
	assert.Equal(t, 1, cache.Len())
}
