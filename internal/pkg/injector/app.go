// Package injector 手动组装应用依赖
package injector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/ai/provider/openai"
	providertypes "github.com/lk2023060901/scholar-ai/internal/ai/provider/types"
	"github.com/lk2023060901/scholar-ai/internal/conf"
	"github.com/lk2023060901/scholar-ai/internal/data"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/biz"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/builder"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/chunker"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/embedding"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/ingest"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/loader"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/service"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
	"github.com/lk2023060901/scholar-ai/internal/pkg/metrics"
	"github.com/lk2023060901/scholar-ai/internal/pkg/workerpool"
	"github.com/lk2023060901/scholar-ai/internal/server"
)

// App 应用依赖集合
type App struct {
	Config   *conf.Config
	Logger   *logger.Logger
	Data     *data.Data
	Registry *prometheus.Registry // 未启用指标时为 nil

	Process *biz.ProcessUseCase
	Query   *biz.QueryUseCase
	Country *biz.CountryUseCase

	rag     *metrics.RAGMetrics
	pool    *workerpool.Pool
	cleanup func()
}

// InitializeApp 按配置组装全部依赖，返回的 cleanup 释放资源
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	d, dataCleanup, err := data.NewData(config, log)
	if err != nil {
		return nil, nil, err
	}

	app, err := newApp(config, log, d)
	if err != nil {
		dataCleanup()
		return nil, nil, err
	}

	cleanup := func() {
		stats := app.pool.Stats()
		log.Info("embedding pool stopped",
			zap.Int64("submitted", stats.Submitted),
			zap.Int64("completed", stats.Completed),
			zap.Int64("failed", stats.Failed))
		app.pool.Shutdown()
		dataCleanup()
	}
	app.cleanup = cleanup
	return app, cleanup, nil
}

func newApp(config *conf.Config, log *logger.Logger, d *data.Data) (*App, error) {
	var cache embedding.Cache
	if d.Redis != nil {
		cache = d.Redis
	}

	embedder, err := embedding.New(&embedding.Config{
		Model:     config.Embedding.Model,
		Dimension: config.Embedding.Dimension,
		BatchSize: config.Embedding.BatchSize,
		APIKey:    config.Embedding.APIKey,
		BaseURL:   config.Embedding.BaseURL,
		CacheTTL:  config.Redis.CacheTTL,
	}, cache, log)
	if err != nil {
		return nil, err
	}

	chat, err := openai.New(&providertypes.Config{
		APIKey:      config.OpenAI.APIKey,
		BaseURL:     config.OpenAI.BaseURL,
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.MaxTokens,
		Temperature: float32(config.LLM.Temperature),
	})
	if err != nil {
		return nil, err
	}

	pool, err := workerpool.New(&workerpool.Config{Workers: config.Worker.EmbeddingWorkers}, log.Logger)
	if err != nil {
		return nil, err
	}

	counter := tokenCounter(config, log)

	countryChunker, err := chunker.New(&chunker.Config{
		Strategy: chunker.StrategyWordWindow,
		Size:     config.Chunking.CountryWindow,
		Overlap:  config.Chunking.CountryOverlap,
		Counter:  counter,
	})
	if err != nil {
		pool.Shutdown()
		return nil, err
	}

	generation := biz.GenerationConfig{
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.MaxTokens,
		Temperature: float32(config.LLM.Temperature),
	}

	indexer := biz.NewIndexer(d.Store, embedder, pool, config.Embedding.BatchSize, log)

	app := &App{
		Config:  config,
		Logger:  log,
		Data:    d,
		pool:    pool,
		Process: biz.NewProcessUseCase(newIngestor(config, counter, log), indexer, log),
		Query: biz.NewQueryUseCase(d.Store, embedder, chat, biz.QueryConfig{
			Limit:               config.Search.Limit,
			ScoreThreshold:      float32(config.Search.ScoreThreshold),
			DistinctScrollLimit: config.Qdrant.DistinctScrollLimit,
			AnswerLanguage:      config.LLM.AnswerLanguage,
			Generation:          generation,
		}, log),
		Country: biz.NewCountryUseCase(loader.NewFactory(), countryChunker, d.CountryStore, embedder, pool, chat, biz.CountryConfig{
			Limit:      config.Search.CountryLimit,
			Generation: generation,
		}, log),
	}

	if config.Server.EnableMetrics {
		app.Registry = metrics.NewRegistry()
		app.rag = metrics.NewRAGMetrics(app.Registry)
	}
	return app, nil
}

// NewIngestor 创建学校目录分块器，不依赖外部服务
func NewIngestor(config *conf.Config, log *logger.Logger) *ingest.Ingestor {
	return newIngestor(config, tokenCounter(config, log), log)
}

func newIngestor(config *conf.Config, counter chunker.TokenCounter, log *logger.Logger) *ingest.Ingestor {
	return ingest.New(builder.New(builder.Config{
		MaxChunkSize: config.Chunking.MaxChunkSize,
		PartSize:     config.Chunking.PartSize,
		SplitMode:    builder.SplitMode(config.Chunking.SplitMode),
		Counter:      counter,
	}, log), log)
}

// tokenCounter 编码不可用时返回 nil，分块不统计 token
func tokenCounter(config *conf.Config, log *logger.Logger) chunker.TokenCounter {
	if config.Chunking.TokenEncoding == "" {
		return nil
	}
	tc, err := chunker.NewTiktokenCounter(config.Chunking.TokenEncoding)
	if err != nil {
		log.Warn("token counter unavailable, token counts disabled",
			zap.String("encoding", config.Chunking.TokenEncoding), zap.Error(err))
		return nil
	}
	return tc
}

// NewHTTPServer 创建挂载查询与国家模式路由的 HTTP 服务
func (a *App) NewHTTPServer() *server.HTTPServer {
	return server.NewHTTPServer(&a.Config.Server, a.Logger, a.Registry,
		service.NewQueryService(a.Query, a.rag),
		service.NewCountryService(a.Country, a.rag),
	)
}

// Cleanup 释放资源
func (a *App) Cleanup() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// LoggerConfig 将日志配置转换为 logger.Config
func LoggerConfig(c conf.LogConfig) *logger.Config {
	cfg := logger.DefaultConfig()
	if c.Level != "" {
		cfg.Level = c.Level
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.Output != "" {
		cfg.Output = c.Output
	}
	cfg.EnableCaller = c.EnableCaller
	cfg.EnableStacktrace = c.EnableStacktrace
	cfg.File = logger.FileConfig{
		Filename:   c.File.Filename,
		MaxSize:    c.File.MaxSize,
		MaxAge:     c.File.MaxAge,
		MaxBackups: c.File.MaxBackups,
		Compress:   c.File.Compress,
	}
	return cfg
}

// ShutdownTimeout 返回优雅关闭等待时间
func (a *App) ShutdownTimeout() time.Duration {
	if a.Config.Server.ShutdownTimeout > 0 {
		return a.Config.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
