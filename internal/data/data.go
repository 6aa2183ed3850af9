// Package data 创建外部资源连接：Qdrant 与可选的 Redis
package data

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/conf"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/storage"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
	pkgqdrant "github.com/lk2023060901/scholar-ai/internal/pkg/qdrant"
	pkgredis "github.com/lk2023060901/scholar-ai/internal/pkg/redis"
)

// Data 共享的数据层资源
type Data struct {
	Qdrant       *pkgqdrant.Client
	Redis        *pkgredis.Client // 未启用时为 nil
	Store        storage.VectorStore
	CountryStore storage.VectorStore
}

// NewData 创建数据层，返回的 cleanup 关闭所有连接
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	qdrantCfg := pkgqdrant.DefaultConfig()
	qdrantCfg.Host = config.Qdrant.Host
	qdrantCfg.Port = config.Qdrant.Port
	qdrantCfg.APIKey = config.Qdrant.APIKey
	qdrantCfg.UseTLS = config.Qdrant.UseTLS

	qdrantClient, err := pkgqdrant.New(qdrantCfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init qdrant: %w", err)
	}

	store, err := storage.NewQdrantStore(qdrantClient, storage.QdrantStoreConfig{
		Collection: config.Qdrant.Collection,
		Dimension:  config.Embedding.Dimension,
		BatchSize:  config.Qdrant.UpsertBatchSize,
	}, log)
	if err != nil {
		_ = qdrantClient.Close()
		return nil, nil, err
	}

	countryStore, err := storage.NewQdrantStore(qdrantClient, storage.QdrantStoreConfig{
		Collection: config.Qdrant.CountryCollection,
		Dimension:  config.Embedding.Dimension,
		BatchSize:  config.Qdrant.UpsertBatchSize,
	}, log)
	if err != nil {
		_ = qdrantClient.Close()
		return nil, nil, err
	}

	d := &Data{
		Qdrant:       qdrantClient,
		Store:        store,
		CountryStore: countryStore,
	}

	if config.Redis.Enabled {
		redisCfg := pkgredis.DefaultConfig()
		redisCfg.Addr = config.Redis.Addr
		redisCfg.Password = config.Redis.Password
		redisCfg.DB = config.Redis.DB

		redisClient, err := pkgredis.New(redisCfg, log)
		if err != nil {
			log.Warn("redis unavailable, embedding cache disabled", zap.Error(err))
		} else {
			d.Redis = redisClient
		}
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if d.Redis != nil {
			_ = d.Redis.Close()
		}
		if !qdrantClient.IsClosed() {
			_ = qdrantClient.Close()
		}
	}

	return d, cleanup, nil
}
