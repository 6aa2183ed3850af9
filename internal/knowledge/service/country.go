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

// CountryUseCase 国家问答用例
type CountryUseCase interface {
	Answer(ctx context.Context, req *types.CountryQueryRequest) (*types.CountryAnswer, error)
}

// CountryService 国家问答 HTTP 服务
type CountryService struct {
	uc      CountryUseCase
	metrics *metrics.RAGMetrics
}

// NewCountryService 创建国家问答服务
func NewCountryService(uc CountryUseCase, m *metrics.RAGMetrics) *CountryService {
	return &CountryService{uc: uc, metrics: m}
}

// RegisterRoutes 注册路由
func (s *CountryService) RegisterRoutes(r gin.IRoutes) {
	r.POST("/countries/query", s.Query)
}

// Query 在国家资料中检索并回答问题
func (s *CountryService) Query(c *gin.Context) {
	start := time.Now()

	var req CountryQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.ObserveQuery("country", metrics.OutcomeInvalid, time.Since(start).Seconds(), 0)
		response.AnswerError(c, http.StatusBadRequest, biz.EmptyQuestionAnswer, noJSONError)
		return
	}

	answer, err := s.uc.Answer(c.Request.Context(), &types.CountryQueryRequest{Question: req.Question, Country: req.Country})
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("country query failed", zap.Error(err))
		s.metrics.ObserveQuery("country", metrics.OutcomeFailed, time.Since(start).Seconds(), 0)
		response.HandleAnswerError(c, err)
		return
	}

	if answer.Error != "" {
		s.metrics.ObserveQuery("country", metrics.OutcomeInvalid, time.Since(start).Seconds(), 0)
		c.JSON(http.StatusBadRequest, answer)
		return
	}

	outcome := metrics.OutcomeAnswered
	if len(answer.Sources) == 0 {
		outcome = metrics.OutcomeNotFound
	}
	s.metrics.ObserveQuery("country", outcome, time.Since(start).Seconds(), len(answer.Sources))
	response.OK(c, answer)
}
