package qdrant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// Client Qdrant 客户端封装
type Client struct {
	cfg    *Config
	client *qdrant.Client
	logger *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// New 创建 Qdrant 客户端，gRPC 调用经过日志拦截器
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if log == nil {
		log = logger.L()
	}
	log = log.Named("qdrant")

	client, err := qdrant.NewClient(clientConfig(cfg, log))
	if err != nil {
		return nil, WrapError("New", err, "")
	}

	log.Info("qdrant client created successfully",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Bool("tls", cfg.UseTLS))

	return &Client{
		cfg:    cfg,
		client: client,
		logger: log,
	}, nil
}

// clientConfig 构造 SDK 配置。
// 跳过 SDK 自带的版本检查，连通性由 HealthCheck 负责。
func clientConfig(cfg *Config, log *logger.Logger) *qdrant.Config {
	return &qdrant.Config{
		Host:                   cfg.Host,
		Port:                   cfg.Port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: true,
		GrpcOptions: []grpc.DialOption{
			grpc.WithChainUnaryInterceptor(logger.UnaryClientInterceptor(log)),
		},
	}
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	if err := c.client.Close(); err != nil {
		c.logger.Error("failed to close qdrant client", zap.Error(err))
		return WrapError("Close", err, "")
	}

	c.closed = true
	c.logger.Info("qdrant client closed successfully")
	return nil
}

// IsClosed 检查客户端是否已关闭
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// GetClient 获取底层客户端，已关闭时返回 nil
func (c *Client) GetClient() *qdrant.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil
	}
	return c.client
}

// HealthCheck 检查与 Qdrant 服务器的连接，返回服务器版本
func (c *Client) HealthCheck(ctx context.Context) (string, error) {
	cli := c.GetClient()
	if cli == nil {
		return "", ErrClientClosed
	}

	reply, err := cli.HealthCheck(ctx)
	if err != nil {
		return "", WrapError("HealthCheck", err, "")
	}
	return reply.GetVersion(), nil
}

// Do 执行操作，遇到可重试错误时按配置重试
func (c *Client) Do(ctx context.Context, op string, fn func(context.Context, *qdrant.Client) error) error {
	cli := c.GetClient()
	if cli == nil {
		return ErrClientClosed
	}
	return retry(ctx, c.logger, op, c.cfg.MaxRetries, c.cfg.RetryDelay, func(ctx context.Context) error {
		return fn(ctx, cli)
	})
}

func retry(ctx context.Context, log *logger.Logger, op string, maxRetries int, delay time.Duration, fn func(context.Context) error) error {
	var err error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			log.Warn("retrying operation",
				zap.String("operation", op),
				zap.Int("attempt", i),
				zap.Int("max_retries", maxRetries),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err = fn(ctx)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("max retries exceeded: %w", err)
}
