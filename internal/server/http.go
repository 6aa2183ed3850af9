package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/conf"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
	"github.com/lk2023060901/scholar-ai/internal/pkg/metrics"
	"github.com/lk2023060901/scholar-ai/internal/pkg/response"
)

// RouteRegistrar 向路由注册接口的服务
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRoutes)
}

// HTTPServer HTTP 服务器
type HTTPServer struct {
	server *http.Server
	router *gin.Engine
	logger *logger.Logger
}

// NewHTTPServer 创建 HTTP 服务器，reg 为 nil 时不暴露 /metrics
func NewHTTPServer(config *conf.ServerConfig, log *logger.Logger, reg *prometheus.Registry, services ...RouteRegistrar) *HTTPServer {
	if config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logger.GinLogger(log, logger.MiddlewareOptions{SkipPaths: []string{"/health", "/metrics"}}))
	router.Use(logger.GinRecovery(log, func(c *gin.Context, _ interface{}) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"answer":  response.ProcessingFailedAnswer,
			"sources": []interface{}{},
		})
	}))
	router.Use(CORS(DefaultCORSConfig))
	router.Use(Timeout(config.RequestTimeout))

	if reg != nil {
		router.Use(metrics.Middleware(metrics.NewHTTPMetrics(reg)))
		router.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	}

	for _, s := range services {
		s.RegisterRoutes(router)
	}

	return &HTTPServer{
		server: &http.Server{
			Addr:    config.Addr(),
			Handler: router,
		},
		router: router,
		logger: log,
	}
}

// Handler 返回路由，便于测试
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 启动服务器，阻塞直到关闭
func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop 优雅关闭
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
