package types

import (
	"errors"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("API key is required")
	ErrMissingModel  = errors.New("model is required")
)

// Config Provider 通用配置
type Config struct {
	APIKey      string        // API Key
	BaseURL     string        // API 基础 URL，为空时使用官方地址
	Timeout     time.Duration // 请求超时
	Model       string        // 默认模型
	MaxTokens   int           // 默认最大输出 tokens
	Temperature float32       // 默认温度
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return ErrMissingModel
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	return nil
}
