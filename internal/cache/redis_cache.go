package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Mohamed-Faroug/store-management-system/internal/domain"
)

type RedisStockAlertCache struct {
	client *redis.Client
}

func NewRedisStockAlertCache(addr string, password string, db int) *RedisStockAlertCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStockAlertCache{client: client}
}

func (c *RedisStockAlertCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisStockAlertCache) Close() error {
	return c.client.Close()
}

func (c *RedisStockAlertCache) Get(ctx context.Context, key string) (*domain.StockAlerts, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var alerts domain.StockAlerts
	if err := json.Unmarshal([]byte(val), &alerts); err != nil {
		return nil, false, err
	}
	return &alerts, true, nil
}

func (c *RedisStockAlertCache) Set(ctx context.Context, key string, value *domain.StockAlerts, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisStockAlertCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
