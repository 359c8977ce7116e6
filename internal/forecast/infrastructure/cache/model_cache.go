// Package cache 提供拟合模型的 Redis 缓存
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wyfcoding/stockinsight/internal/forecast/domain"
	"github.com/wyfcoding/stockinsight/pkg/cache"
)

const keyPrefix = "forecast:model:"

// RedisModelCache 以 forecast:model:<SYMBOL> 保存模型，读取时校验序列指纹
type RedisModelCache struct {
	redis  *cache.RedisCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisModelCache(redis *cache.RedisCache, ttl time.Duration, logger *slog.Logger) *RedisModelCache {
	return &RedisModelCache{redis: redis, ttl: ttl, logger: logger}
}

func key(symbol string) string {
	return fmt.Sprintf("%s%s", keyPrefix, symbol)
}

// Get 指纹不一致视为未命中。Redis 故障同样按未命中处理。
func (c *RedisModelCache) Get(ctx context.Context, symbol, fingerprint string) (*domain.LinearModel, bool) {
	var model domain.LinearModel
	found, err := c.redis.GetJSON(ctx, key(symbol), &model)
	if err != nil {
		c.logger.WarnContext(ctx, "model cache read failed", "symbol", symbol, "error", err)
		return nil, false
	}
	if !found || model.Fingerprint != fingerprint {
		return nil, false
	}
	return &model, true
}

func (c *RedisModelCache) Put(ctx context.Context, symbol string, model *domain.LinearModel) error {
	return c.redis.SetJSON(ctx, key(symbol), model, c.ttl)
}

// NoopModelCache 未配置 Redis 或 TTL 为 0 时使用
type NoopModelCache struct{}

func (NoopModelCache) Get(context.Context, string, string) (*domain.LinearModel, bool) {
	return nil, false
}

func (NoopModelCache) Put(context.Context, string, *domain.LinearModel) error { return nil }
