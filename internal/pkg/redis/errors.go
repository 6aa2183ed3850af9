package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidConfig 配置不合法
var ErrInvalidConfig = errors.New("redis: invalid configuration")

// IsNil 缓存未命中
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
