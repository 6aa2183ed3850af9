package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

const (
	DefaultCacheTTL    = 24 * time.Hour
	DefaultCachePrefix = "kb:embedding:"
)

// Cache 向量缓存所需的键值操作
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	MGet(ctx context.Context, keys ...string) ([]interface{}, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CacheEmbedder 带缓存的 Embedder 装饰器
type CacheEmbedder struct {
	embedder Embedder
	cache    Cache
	ttl      time.Duration
	prefix   string
	logger   *logger.Logger
}

// CacheEmbedderConfig 缓存配置
type CacheEmbedderConfig struct {
	TTL    time.Duration // 缓存过期时间
	Prefix string        // 缓存键前缀
}

// NewCacheEmbedder 创建带缓存的 Embedder
func NewCacheEmbedder(embedder Embedder, cache Cache, cfg *CacheEmbedderConfig, lgr *logger.Logger) *CacheEmbedder {
	if cfg == nil {
		cfg = &CacheEmbedderConfig{}
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultCachePrefix
	}

	log := lgr
	if log == nil {
		log = logger.L()
	}

	return &CacheEmbedder{
		embedder: embedder,
		cache:    cache,
		ttl:      ttl,
		prefix:   prefix,
		logger:   log,
	}
}

// Embed 对单个文本生成向量（带缓存）
func (e *CacheEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	cacheKey := e.cacheKey(text)

	if data, err := e.cache.Get(ctx, cacheKey); err == nil {
		if cached, err := decode(data); err == nil {
			e.logger.Debug("embedding cache hit", zap.String("cache_key", cacheKey))
			return cached, nil
		}
	}

	embedding, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.store(ctx, cacheKey, embedding)
	return embedding, nil
}

// BatchEmbed 批量生成向量（带缓存），只对未命中的文本调用底层 Embedder
func (e *CacheEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = e.cacheKey(text)
	}

	results := make([][]float32, len(texts))
	missingIndices := make([]int, 0, len(texts))
	missingTexts := make([]string, 0, len(texts))

	cached, err := e.cache.MGet(ctx, keys...)
	if err != nil || len(cached) != len(texts) {
		cached = make([]interface{}, len(texts))
	}
	for i, v := range cached {
		if s, ok := v.(string); ok {
			if vec, err := decode(s); err == nil {
				results[i] = vec
				continue
			}
		}
		missingIndices = append(missingIndices, i)
		missingTexts = append(missingTexts, texts[i])
	}

	e.logger.Debug("batch embedding cache stats",
		zap.Int("total", len(texts)),
		zap.Int("cache_hits", len(texts)-len(missingTexts)),
		zap.Int("cache_misses", len(missingTexts)))

	if len(missingTexts) == 0 {
		return results, nil
	}

	embeddings, err := e.embedder.BatchEmbed(ctx, missingTexts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(missingTexts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(missingTexts))
	}

	for i, embedding := range embeddings {
		idx := missingIndices[i]
		results[idx] = embedding
		e.store(ctx, keys[idx], embedding)
	}

	return results, nil
}

// Dimension 返回向量维度
func (e *CacheEmbedder) Dimension() int {
	return e.embedder.Dimension()
}

// Model 返回模型名称
func (e *CacheEmbedder) Model() string {
	return e.embedder.Model()
}

// cacheKey 模型名 + 文本 hash
func (e *CacheEmbedder) cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s%s:%s", e.prefix, e.Model(), hex.EncodeToString(hash[:]))
}

func (e *CacheEmbedder) store(ctx context.Context, key string, embedding []float32) {
	data, err := json.Marshal(embedding)
	if err == nil {
		err = e.cache.Set(ctx, key, string(data), e.ttl)
	}
	if err != nil {
		e.logger.Warn("failed to cache embedding",
			zap.String("cache_key", key),
			zap.Error(err))
	}
}

func decode(data string) ([]float32, error) {
	var embedding []float32
	if err := json.Unmarshal([]byte(data), &embedding); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached embedding: %w", err)
	}
	return embedding, nil
}
