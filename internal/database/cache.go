package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// Cache stores LLM completions and health snapshots. Patient data is never cached.
type Cache struct {
	client redis.Cmdable
	logger *logrus.Logger
}

func NewCache(client redis.Cmdable, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Cache key constants
const (
	CompletionKey   = "llm:completion:%s"
	SystemHealthKey = "system:health"
)

// CachedCompletion is a stored LLM answer
type CachedCompletion struct {
	Model     string    `json:"model"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Cache) CacheCompletion(ctx context.Context, key string, completion *CachedCompletion, expiration time.Duration) error {
	data, err := sonic.Marshal(completion)
	if err != nil {
		return fmt.Errorf("failed to marshal completion: %w", err)
	}
	return c.client.Set(ctx, fmt.Sprintf(CompletionKey, key), data, expiration).Err()
}

func (c *Cache) GetCachedCompletion(ctx context.Context, key string) (*CachedCompletion, error) {
	var completion CachedCompletion
	if err := c.get(ctx, fmt.Sprintf(CompletionKey, key), &completion); err != nil {
		return nil, err
	}
	return &completion, nil
}

func (c *Cache) InvalidateCompletion(ctx context.Context, key string) error {
	return c.client.Del(ctx, fmt.Sprintf(CompletionKey, key)).Err()
}

// CacheSystemHealth caches system health status
func (c *Cache) CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error {
	data, err := sonic.Marshal(health)
	if err != nil {
		return fmt.Errorf("failed to marshal system health: %w", err)
	}
	return c.client.Set(ctx, SystemHealthKey, data, expiration).Err()
}

// GetCachedSystemHealth retrieves cached system health
func (c *Cache) GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := c.get(ctx, SystemHealthKey, &health)
	return health, err
}

func (c *Cache) get(ctx context.Context, key string, dst interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Dropping undecodable cache entry")
		return ErrCacheMiss
	}
	return nil
}

// GetCacheStats reports redis keyspace statistics
func (c *Cache) GetCacheStats(ctx context.Context) (map[string]string, error) {
	info, err := c.client.Info(ctx, "stats").Result()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"keyspace_hits":   extractStat(info, "keyspace_hits"),
		"keyspace_misses": extractStat(info, "keyspace_misses"),
	}, nil
}

func extractStat(info, key string) string {
	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, key+":") {
			return strings.TrimPrefix(line, key+":")
		}
	}
	return "0"
}
