package biz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/embedding"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/storage"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	"github.com/lk2023060901/scholar-ai/internal/pkg/errors"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// DefaultEmbedBatchSize 每个 embedding 任务处理的文本数
const DefaultEmbedBatchSize = 32

// IndexResult 索引结果
type IndexResult struct {
	Collection string        `json:"collection"`
	Points     int           `json:"points"`
	Duration   time.Duration `json:"duration"`
}

// Indexer 将分块向量化后写入向量库
type Indexer struct {
	store     storage.VectorStore
	embedder  embedding.Embedder
	runner    TaskRunner
	batchSize int
	logger    *logger.Logger
}

// NewIndexer 创建 Indexer，runner 为 nil 时顺序向量化
func NewIndexer(store storage.VectorStore, embedder embedding.Embedder, runner TaskRunner, batchSize int, log *logger.Logger) *Indexer {
	if runner == nil {
		runner = sequentialRunner{}
	}
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Indexer{
		store:     store,
		embedder:  embedder,
		runner:    runner,
		batchSize: batchSize,
		logger:    log.Named("indexer"),
	}
}

// Index 向量化 FullContext 并写入集合，clear 为 true 时先重建集合
func (x *Indexer) Index(ctx context.Context, chunks []types.Chunk, clear bool) (*IndexResult, error) {
	texts := make([]string, len(chunks))
	payloads := make([]map[string]interface{}, len(chunks))
	for i, c := range chunks {
		texts[i] = c.FullContext
		payloads[i] = chunkPayload(c, i)
	}
	return x.write(ctx, texts, payloads, clear)
}

// IndexCountries 重建集合并写入国家分块，向量化 Content
func (x *Indexer) IndexCountries(ctx context.Context, chunks []types.CountryChunk) (*IndexResult, error) {
	texts := make([]string, len(chunks))
	payloads := make([]map[string]interface{}, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
		payloads[i] = map[string]interface{}{
			types.PayloadContent: c.Content,
			types.PayloadCountry: c.Country,
		}
	}
	return x.write(ctx, texts, payloads, true)
}

func (x *Indexer) write(ctx context.Context, texts []string, payloads []map[string]interface{}, clear bool) (*IndexResult, error) {
	start := time.Now()

	if clear {
		if err := x.store.RecreateCollection(ctx); err != nil {
			return nil, errors.Wrap(err, errors.ErrVectorDBFailed, "recreate collection")
		}
	} else if err := x.store.EnsureCollection(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrVectorDBFailed, "ensure collection")
	}

	result := &IndexResult{Collection: x.store.Collection()}
	if len(texts) == 0 {
		return result, nil
	}

	vectors, err := x.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	points := make([]*storage.Point, len(texts))
	for i := range texts {
		points[i] = &storage.Point{
			ID:      uuid.NewString(),
			Vector:  vectors[i],
			Payload: payloads[i],
		}
	}

	if err := x.store.Upsert(ctx, points); err != nil {
		return nil, errors.Wrap(err, errors.ErrVectorDBFailed, "upsert points")
	}

	result.Points = len(points)
	result.Duration = time.Since(start)

	x.logger.Info("points indexed",
		zap.String("collection", result.Collection),
		zap.Int("points", result.Points),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// embed 按批次并发向量化，结果顺序与输入一致
func (x *Indexer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	batches := (len(texts) + x.batchSize - 1) / x.batchSize

	err := x.runner.Run(ctx, batches, func(ctx context.Context, i int) error {
		lo := i * x.batchSize
		hi := lo + x.batchSize
		if hi > len(texts) {
			hi = len(texts)
		}

		embeddings, err := x.embedder.BatchEmbed(ctx, texts[lo:hi])
		if err != nil {
			return err
		}
		if len(embeddings) != hi-lo {
			return errors.New(errors.ErrEmbeddingFailed, "embedding count mismatch")
		}
		copy(vectors[lo:hi], embeddings)

		x.logger.Debug("batch embedded", zap.Int("batch", i+1), zap.Int("total", batches))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrEmbeddingFailed)
	}
	return vectors, nil
}

func chunkPayload(c types.Chunk, position int) map[string]interface{} {
	return map[string]interface{}{
		types.PayloadUniversityName: c.UniversityName,
		types.PayloadSectionType:    c.SectionType,
		types.PayloadFieldName:      c.FieldName,
		types.PayloadContent:        c.Content,
		types.PayloadSourceFile:     c.SourceFile,
		types.PayloadChunkIndex:     c.Index(position),
	}
}
