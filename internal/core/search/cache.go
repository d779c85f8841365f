package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"feast-assistant/internal/infrastructure/config"
	"feast-assistant/internal/pkg/common"
)

// ResponseCache 讀穿式回應快取，須支援併發讀取與冪等寫入（後寫者勝）
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// CacheKey 以 endpoint + 排序後的參數集生成快取鍵
func CacheKey(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpoint)
	for _, k := range keys {
		fmt.Fprintf(&b, ":%s=%s", k, params[k])
	}
	return b.String()
}

// cacheEntry 帶插入時間的快取條目
type cacheEntry struct {
	value      []byte
	insertedAt time.Time
}

// MemoryCache 有界的記憶體快取：TTL 過期 + 滿時淘汰最舊插入的條目
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	maxSize int
	ttl     time.Duration
}

// NewMemoryCache 創建記憶體快取
func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get 取得未過期的快取值；過期條目順帶清除
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(entry.insertedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set 寫入快取；超出上限時淘汰插入時間最舊的條目
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{value: value, insertedAt: time.Now()}

	if len(c.entries) > c.maxSize {
		oldestKey := ""
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertedAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Len 當前條目數（測試用）
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache 以 Redis 為後端的回應快取，多實例部署時共享
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache 創建 Redis 快取並驗證連線
func NewRedisCache(addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis 連線失敗: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, "search:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, "search:"+key, value, c.ttl).Err(); err != nil {
		common.LogWarn("快取寫入失敗: " + err.Error())
	}
}

// NewCacheFromConfig 依配置選擇快取後端；Redis 不可用時退回記憶體快取
func NewCacheFromConfig(cfg *config.CacheConfig) ResponseCache {
	if !cfg.Enabled {
		return nil
	}
	ttl := cfg.TTL
	if cfg.Backend == "redis" {
		cache, err := NewRedisCache(cfg.RedisAddr, ttl)
		if err == nil {
			common.LogInfo("使用 Redis 快取後端")
			return cache
		}
		common.LogWarn("Redis 不可用，退回記憶體快取: " + err.Error())
	}
	return NewMemoryCache(cfg.MaxSize, ttl)
}
