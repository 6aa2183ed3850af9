package service

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/biz"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
	"github.com/lk2023060901/scholar-ai/internal/pkg/metrics"
	"github.com/lk2023060901/scholar-ai/internal/pkg/response"
)

// noJSONError 请求体不是 JSON 时的错误信息
const noJSONError = "No JSON data provided"

// QueryUseCase 大学问答用例
type QueryUseCase interface {
	Answer(ctx context.Context, req *types.QueryRequest) (*types.Answer, error)
	Universities(ctx context.Context) ([]string, error)
	Sections(ctx context.Context) ([]string, error)
}

// QueryService 大学问答 HTTP 服务
type QueryService struct {
	uc      QueryUseCase
	metrics *metrics.RAGMetrics
}

// NewQueryService 创建问答服务，m 可为 nil
func NewQueryService(uc QueryUseCase, m *metrics.RAGMetrics) *QueryService {
	return &QueryService{uc: uc, metrics: m}
}

// RegisterRoutes 注册路由
func (s *QueryService) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", s.Health)
	r.POST("/query", s.Query)
	r.GET("/universities", s.Universities)
	r.GET("/sections", s.Sections)
}

// Health 健康检查
func (s *QueryService) Health(c *gin.Context) {
	response.OK(c, HealthResponse{Status: "healthy", Service: ServiceName, Version: ServiceVersion})
}

// Query 检索并回答问题
func (s *QueryService) Query(c *gin.Context) {
	start := time.Now()

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.ObserveQuery("university", metrics.OutcomeInvalid, time.Since(start).Seconds(), 0)
		response.AnswerError(c, http.StatusBadRequest, biz.EmptyQuestionAnswer, noJSONError)
		return
	}

	answer, err := s.uc.Answer(c.Request.Context(), req.toBiz())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("query failed", zap.Error(err))
		s.metrics.ObserveQuery("university", metrics.OutcomeFailed, time.Since(start).Seconds(), 0)
		response.HandleAnswerError(c, err)
		return
	}

	if answer.Error != "" {
		s.metrics.ObserveQuery("university", metrics.OutcomeInvalid, time.Since(start).Seconds(), 0)
		c.JSON(http.StatusBadRequest, answer)
		return
	}

	outcome := metrics.OutcomeAnswered
	if len(answer.Sources) == 0 {
		outcome = metrics.OutcomeNotFound
	}
	s.metrics.ObserveQuery("university", outcome, time.Since(start).Seconds(), len(answer.Sources))
	response.OK(c, answer)
}

// Universities 列出已索引的大学
func (s *QueryService) Universities(c *gin.Context) {
	values, err := s.uc.Universities(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("list universities failed", zap.Error(err))
		response.HandleError(c, err, gin.H{"universities": []string{}})
		return
	}
	response.OK(c, UniversitiesResponse{Universities: values})
}

// Sections 列出已索引的章节
func (s *QueryService) Sections(c *gin.Context) {
	values, err := s.uc.Sections(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("list sections failed", zap.Error(err))
		response.HandleError(c, err, gin.H{"sections": []string{}})
		return
	}
	response.OK(c, SectionsResponse{Sections: values})
}
