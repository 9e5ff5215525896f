package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moodlog/internal/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTTL = 10 * time.Minute

// Cache 封装 Redis 的 JSON 读写；client 为空时所有操作都是空操作，调用方无需判断。
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Open 根据 REDIS_URL 建立连接；url 为空返回禁用状态的 Cache。
func Open(ctx context.Context, url string, ttl time.Duration, logger *zap.Logger) (*Cache, error) {
	if strings.TrimSpace(url) == "" {
		return New(nil, ttl, logger), nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return New(client, ttl, logger), nil
}

// New 使用已有 client 构造 Cache
func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = logging.L()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Enabled 表示是否接入了 Redis
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON 读取 key 并反序列化到 dst，未命中或出错返回 false。
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if !c.Enabled() {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON 序列化 value 并按默认 TTL 写入。
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if !c.Enabled() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateByPrefix 通过 SCAN 删除匹配前缀的所有 key。
func (c *Cache) InvalidateByPrefix(ctx context.Context, prefix string) {
	if !c.Enabled() {
		return
	}

	var cursor uint64
	for round := 0; round < 10; round++ {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 500).Result()
		if err != nil {
			c.logger.Warn("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.logger.Warn("cache delete failed", zap.String("prefix", prefix), zap.Error(err))
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// Close 关闭底层连接
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
