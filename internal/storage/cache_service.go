package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/report-enclave/internal/types"
)

// CacheService provides JSON caching on top of Redis for report responses
// and benchmark return series.
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyBenchmark is for benchmark daily return series
	CacheKeyBenchmark CacheKeyType = "bench"
	// CacheKeyReport is for assembled signed report responses
	CacheKeyReport CacheKeyType = "report"
)

// GenerateCacheKey generates a cache key for a given type and parameters.
// Format: <type>:<param1>:<param2>:...
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	normalized := make([]string, len(params))
	for i, param := range params {
		normalized[i] = strings.ToLower(param)
	}

	parts := append([]string{string(keyType)}, normalized...)
	return strings.Join(parts, ":")
}

// GenerateBenchmarkKey generates a cache key for a benchmark return series.
// Format: bench:<symbol>:<startDate>:<endDate>
func (c *CacheService) GenerateBenchmarkKey(symbol types.BenchmarkSymbol, startDate, endDate string) string {
	return c.GenerateCacheKey(CacheKeyBenchmark, string(symbol), startDate, endDate)
}

// GenerateReportKey generates a cache key for a signed report response.
// Format: report:<userUid>:<startDate>:<endDate>:<benchmark or "none">
func (c *CacheService) GenerateReportKey(userUID, startDate, endDate, benchmark string) string {
	if benchmark == "" {
		benchmark = "none"
	}
	return c.GenerateCacheKey(CacheKeyReport, userUID, startDate, endDate, benchmark)
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with a custom TTL
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redis.Set(ctx, key, data, ttl)
}

// Get retrieves a value from cache and deserializes it. A miss returns
// (false, nil).
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}

// InvalidateUser removes all cached report responses for a user
func (c *CacheService) InvalidateUser(ctx context.Context, userUID string) error {
	pattern := fmt.Sprintf("report:%s:*", strings.ToLower(userUID))
	keys, err := c.redis.Keys(ctx, pattern)
	if err != nil {
		return fmt.Errorf("failed to find keys matching pattern: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}

// Exists checks if a key exists in cache
func (c *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	return c.redis.Exists(ctx, key)
}

// TTL returns the configured default TTL for this cache service
func (c *CacheService) TTL() time.Duration {
	return c.ttl
}
