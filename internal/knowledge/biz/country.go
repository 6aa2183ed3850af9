package biz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	providertypes "github.com/lk2023060901/scholar-ai/internal/ai/provider/types"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/chunker"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/embedding"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/loader"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/storage"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	"github.com/lk2023060901/scholar-ai/internal/pkg/errors"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// DefaultCountryLimit 国家模式检索条数
const DefaultCountryLimit = 15

const countrySystemPrompt = "You are a helpful study abroad advisor."

const countryQuestionPrompt = `Based on the following university information, answer the question below clearly and completely.

University data:
%s

Question: %s
Answer:`

// DocumentLoader 读取资料文件
type DocumentLoader interface {
	LoadFile(ctx context.Context, path string) (*loader.Document, error)
}

// CountryConfig 国家模式参数
type CountryConfig struct {
	Limit      int
	Generation GenerationConfig
}

// CountryFile 单个文件的导入结果
type CountryFile struct {
	File    string `json:"file"`
	Country string `json:"country"`
	Chunks  int    `json:"chunks"`
}

// CountryIngestResult 国家资料导入结果
type CountryIngestResult struct {
	Files []CountryFile `json:"files"`
	Index *IndexResult  `json:"index"`
}

// CountryUseCase 国家资料导入与问答，与大学流程相互独立
type CountryUseCase struct {
	loader   DocumentLoader
	chunker  chunker.Chunker
	indexer  *Indexer
	store    storage.VectorStore
	embedder embedding.Embedder
	chat     ChatModel
	cfg      CountryConfig
	logger   *logger.Logger
}

// NewCountryUseCase 创建国家模式用例，store 为国家集合
func NewCountryUseCase(
	docLoader DocumentLoader,
	ck chunker.Chunker,
	store storage.VectorStore,
	embedder embedding.Embedder,
	runner TaskRunner,
	chat ChatModel,
	cfg CountryConfig,
	log *logger.Logger,
) *CountryUseCase {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultCountryLimit
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &CountryUseCase{
		loader:   docLoader,
		chunker:  ck,
		indexer:  NewIndexer(store, embedder, runner, 0, log),
		store:    store,
		embedder: embedder,
		chat:     chat,
		cfg:      cfg,
		logger:   log.Named("country"),
	}
}

// Ingest 读取文件、按词窗口分块后重建国家集合。
// country 为空时使用文件名（不含扩展名）。
func (uc *CountryUseCase) Ingest(ctx context.Context, paths []string, country string) (*CountryIngestResult, error) {
	result := &CountryIngestResult{Files: make([]CountryFile, 0, len(paths))}
	var all []types.CountryChunk

	for _, path := range paths {
		chunks, err := uc.Chunk(ctx, path, country)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)

		result.Files = append(result.Files, CountryFile{File: path, Country: countryName(country, path), Chunks: len(chunks)})
		uc.logger.Info("country file chunked", zap.String("file", path), zap.Int("chunks", len(chunks)))
	}

	index, err := uc.indexer.IndexCountries(ctx, all)
	if err != nil {
		return nil, err
	}
	result.Index = index
	return result, nil
}

// Chunk 读取单个文件并分块
func (uc *CountryUseCase) Chunk(ctx context.Context, path, country string) ([]types.CountryChunk, error) {
	doc, err := uc.loader.LoadFile(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIngestReadFailed, "%s", path)
	}

	name := countryName(country, path)
	pieces, err := uc.chunker.Chunk(ctx, loader.Clean(doc.Content))
	if err != nil {
		return nil, err
	}

	chunks := make([]types.CountryChunk, 0, len(pieces))
	for _, p := range pieces {
		chunks = append(chunks, types.CountryChunk{Country: name, Content: p.Content, ChunkIndex: p.Index})
	}
	return chunks, nil
}

// Answer 在国家集合中检索并生成回答
func (uc *CountryUseCase) Answer(ctx context.Context, req *types.CountryQueryRequest) (*types.CountryAnswer, error) {
	question, country := "", ""
	if req != nil {
		question = strings.TrimSpace(req.Question)
		country = strings.TrimSpace(req.Country)
	}
	if question == "" {
		return &types.CountryAnswer{
			Answer:  EmptyQuestionAnswer,
			Sources: []types.CountrySource{},
			Error:   NoQuestionError,
		}, nil
	}

	vector, err := uc.embedder.Embed(ctx, question)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRetrievalFailed, "embed question")
	}

	search := &storage.SearchRequest{Vector: vector, Limit: uc.cfg.Limit}
	if country != "" {
		search.Must = []types.Condition{{Key: types.PayloadCountry, Value: country}}
	}
	hits, err := uc.store.Search(ctx, search)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRetrievalFailed, "search")
	}

	if len(hits) == 0 {
		return &types.CountryAnswer{Answer: NotFoundAnswer, Sources: []types.CountrySource{}}, nil
	}

	lines := make([]string, 0, len(hits))
	sources := make([]types.CountrySource, 0, len(hits))
	for _, hit := range hits {
		lines = append(lines, fmt.Sprintf("%s: %s", hit.Get(types.PayloadCountry), hit.Get(types.PayloadContent)))
		sources = append(sources, types.CountrySource{Country: hit.Get(types.PayloadCountry), Score: hit.Score})
	}

	resp, err := uc.chat.CreateChatCompletion(ctx, uc.cfg.Generation.request(
		providertypes.SystemMessage(countrySystemPrompt),
		providertypes.UserMessage(fmt.Sprintf(countryQuestionPrompt, strings.Join(lines, "\n"), question)),
	))
	if err != nil {
		uc.logger.Warn("answer generation failed", zap.Error(err))
		return &types.CountryAnswer{Answer: GenerationFailedPrefix + err.Error(), Sources: sources}, nil
	}

	return &types.CountryAnswer{Answer: resp.Text(), Sources: sources}, nil
}

func countryName(country, path string) string {
	if name := strings.TrimSpace(country); name != "" {
		return name
	}
	return loader.Stem(path)
}
