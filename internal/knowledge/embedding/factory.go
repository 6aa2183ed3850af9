package embedding

import (
	"fmt"
	"time"

	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// Config Embedder 配置
type Config struct {
	Model     string
	Dimension int
	BatchSize int
	APIKey    string
	BaseURL   string
	CacheTTL  time.Duration
}

// New 创建 Embedder，cache 不为空时包装为缓存 Embedder
func New(cfg *Config, cache Cache, lgr *logger.Logger) (Embedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	embedder, err := NewOpenAIEmbedder(&OpenAIEmbedderConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		Dimension: cfg.Dimension,
		BatchSize: cfg.BatchSize,
	}, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	if cache == nil {
		return embedder, nil
	}
	return NewCacheEmbedder(embedder, cache, &CacheEmbedderConfig{TTL: cfg.CacheTTL}, lgr), nil
}
