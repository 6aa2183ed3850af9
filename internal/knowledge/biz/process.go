package biz

import (
	"context"

	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/ingest"
	"github.com/lk2023060901/scholar-ai/internal/pkg/errors"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// CorpusIngestor 将目录转换为分块
type CorpusIngestor interface {
	Ingest(ctx context.Context, dir string) (*ingest.Result, error)
}

// ProcessResult 一次完整入库的结果
type ProcessResult struct {
	Ingest *ingest.Result `json:"ingest"`
	Index  *IndexResult   `json:"index"`
	Stats  ingest.Stats   `json:"stats"`
}

// ProcessUseCase 学校数据入库：读取目录、分块、向量化并写入学校集合
type ProcessUseCase struct {
	ingestor CorpusIngestor
	indexer  *Indexer
	logger   *logger.Logger
}

// NewProcessUseCase 创建入库用例
func NewProcessUseCase(ingestor CorpusIngestor, indexer *Indexer, log *logger.Logger) *ProcessUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &ProcessUseCase{
		ingestor: ingestor,
		indexer:  indexer,
		logger:   log.Named("process"),
	}
}

// Process 处理目录并写入向量库。keep 为 false 时先重建集合。
// 没有产生任何分块时返回 ErrIngestNoChunks，集合保持不变。
func (uc *ProcessUseCase) Process(ctx context.Context, dir string, keep bool) (*ProcessResult, error) {
	res, err := uc.ingestor.Ingest(ctx, dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIngestReadFailed, dir)
	}

	if len(res.Chunks) == 0 {
		detail := res.Diagnostic
		if detail == "" {
			detail = dir
		}
		return &ProcessResult{Ingest: res}, errors.New(errors.ErrIngestNoChunks, detail)
	}

	stats := ingest.Analyze(res.Chunks)
	uc.logger.Info("corpus chunked",
		zap.Int("chunks", stats.TotalChunks),
		zap.Int("universities", stats.UniversityCount),
		zap.Int("failures", len(res.Failures)))

	idx, err := uc.indexer.Index(ctx, res.Chunks, !keep)
	if err != nil {
		return &ProcessResult{Ingest: res, Stats: stats}, err
	}

	return &ProcessResult{Ingest: res, Index: idx, Stats: stats}, nil
}
