package redis

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// 以下方法满足 embedding.Cache，失败只记录日志，由调用方决定是否回源

// Set 写入缓存值，expiration 为 0 表示不过期
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Get 读取单个缓存值，未命中时 IsNil(err) 为 true
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil && !IsNil(err) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	return val, err
}

// MGet 批量读取，未命中的位置为 nil
func (c *Client) MGet(ctx context.Context, keys ...string) ([]interface{}, error) {
	if len(keys) == 0 {
		return []interface{}{}, nil
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("cache batch read failed", zap.Int("keys", len(keys)), zap.Error(err))
		return nil, err
	}

	hits := 0
	for _, v := range vals {
		if v != nil {
			hits++
		}
	}
	c.logger.Debug("cache batch read", zap.Int("keys", len(keys)), zap.Int("hits", hits))
	return vals, nil
}
