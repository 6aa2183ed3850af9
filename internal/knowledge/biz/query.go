package biz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	providertypes "github.com/lk2023060901/scholar-ai/internal/ai/provider/types"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/embedding"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/storage"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	"github.com/lk2023060901/scholar-ai/internal/pkg/errors"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// 固定回复
const (
	EmptyQuestionAnswer    = "Please enter a question."
	NoQuestionError        = "No question provided"
	NotFoundAnswer         = "Sorry, I could not find any information matching your question."
	GenerationFailedPrefix = "Sorry, an error occurred while generating the answer: "
	DefaultAnswerLanguage  = "English"
)

const advisorPrompt = `You are a study abroad consultant who helps students learn about international universities.

Answer guidelines:
- Answer in %s
- Provide accurate information based on the data supplied
- If information is missing, say so clearly and suggest where to learn more
- Organize the information so it is clear and easy to read
- Give students practical advice`

const questionPrompt = `Based on the following information about universities:

%s

Answer the question: %s

Note: only use the information provided above to answer.`

// QueryConfig 问答参数
type QueryConfig struct {
	Limit               int
	ScoreThreshold      float32
	DistinctScrollLimit int
	AnswerLanguage      string
	Generation          GenerationConfig
}

// QueryUseCase 大学问答用例
type QueryUseCase struct {
	store    storage.VectorStore
	embedder embedding.Embedder
	chat     ChatModel
	cfg      QueryConfig
	logger   *logger.Logger
}

// NewQueryUseCase 创建问答用例
func NewQueryUseCase(store storage.VectorStore, embedder embedding.Embedder, chat ChatModel, cfg QueryConfig, log *logger.Logger) *QueryUseCase {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.DistinctScrollLimit <= 0 {
		cfg.DistinctScrollLimit = 1000
	}
	if strings.TrimSpace(cfg.AnswerLanguage) == "" {
		cfg.AnswerLanguage = DefaultAnswerLanguage
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &QueryUseCase{
		store:    store,
		embedder: embedder,
		chat:     chat,
		cfg:      cfg,
		logger:   log.Named("query"),
	}
}

// Answer 检索相关段落并生成回答。
// 空问题与无命中是正常结果；检索失败返回 ErrRetrievalFailed。
func (uc *QueryUseCase) Answer(ctx context.Context, req *types.QueryRequest) (*types.Answer, error) {
	question := ""
	var filter types.SearchFilter
	if req != nil {
		question = strings.TrimSpace(req.Question)
		filter = req.SearchFilter
	}
	if question == "" {
		return &types.Answer{
			Answer:  EmptyQuestionAnswer,
			Sources: []types.Source{},
			Error:   NoQuestionError,
		}, nil
	}

	hits, err := uc.Retrieve(ctx, question, filter)
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		return &types.Answer{Answer: NotFoundAnswer, Sources: []types.Source{}}, nil
	}

	blocks := make([]string, 0, len(hits))
	sources := make([]types.Source, 0, len(hits))
	for _, hit := range hits {
		blocks = append(blocks, ContextBlock(hit))
		sources = append(sources, types.Source{
			University: hit.Get(types.PayloadUniversityName),
			Section:    hit.Get(types.PayloadSectionType),
			Field:      hit.Get(types.PayloadFieldName),
			Score:      hit.Score,
			SourceFile: hit.Get(types.PayloadSourceFile),
		})
	}

	answer := uc.generate(ctx, question, strings.Join(blocks, "\n\n"))
	return &types.Answer{Answer: answer, Sources: sources}, nil
}

// Retrieve 向量化问题并按过滤条件检索
func (uc *QueryUseCase) Retrieve(ctx context.Context, question string, filter types.SearchFilter) ([]types.SearchHit, error) {
	vector, err := uc.embedder.Embed(ctx, question)
	if err != nil {
		uc.logger.Error("embed question failed", zap.Error(err))
		return nil, errors.Wrap(err, errors.ErrRetrievalFailed, "embed question")
	}

	hits, err := uc.store.Search(ctx, &storage.SearchRequest{
		Vector:         vector,
		Must:           filter.Conditions(),
		Limit:          uc.cfg.Limit,
		ScoreThreshold: uc.cfg.ScoreThreshold,
	})
	if err != nil {
		uc.logger.Error("search failed", zap.Error(err))
		return nil, errors.Wrap(err, errors.ErrRetrievalFailed, "search")
	}

	uc.logger.Debug("retrieved passages",
		zap.Int("hits", len(hits)),
		zap.Bool("filtered", !filter.IsEmpty()))
	return hits, nil
}

// Universities 返回已索引的大学名称
func (uc *QueryUseCase) Universities(ctx context.Context) ([]string, error) {
	return uc.distinct(ctx, types.PayloadUniversityName)
}

// Sections 返回已索引的章节名称
func (uc *QueryUseCase) Sections(ctx context.Context) ([]string, error) {
	return uc.distinct(ctx, types.PayloadSectionType)
}

func (uc *QueryUseCase) distinct(ctx context.Context, key string) ([]string, error) {
	values, err := uc.store.DistinctValues(ctx, key, uc.cfg.DistinctScrollLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrVectorDBFailed, key)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (uc *QueryUseCase) generate(ctx context.Context, question, passages string) string {
	resp, err := uc.chat.CreateChatCompletion(ctx, uc.cfg.Generation.request(
		providertypes.SystemMessage(SystemPrompt(uc.cfg.AnswerLanguage)),
		providertypes.UserMessage(fmt.Sprintf(questionPrompt, passages, question)),
	))
	if err != nil {
		uc.logger.Warn("answer generation failed", zap.Error(err))
		return GenerationFailedPrefix + err.Error()
	}
	return resp.Content
}

// SystemPrompt 留学顾问系统提示词
func SystemPrompt(language string) string {
	return fmt.Sprintf(advisorPrompt, language)
}

// ContextBlock 将一条命中格式化为上下文段落
func ContextBlock(hit types.SearchHit) string {
	section := hit.Get(types.PayloadSectionType)
	if field := hit.Get(types.PayloadFieldName); field != "" {
		section = fmt.Sprintf("%s (%s)", section, field)
	}
	return fmt.Sprintf("**%s - %s:**\n%s", hit.Get(types.PayloadUniversityName), section, hit.Get(types.PayloadContent))
}
