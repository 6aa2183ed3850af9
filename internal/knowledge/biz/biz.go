// Package biz 知识库业务用例：索引、大学问答与国家问答
package biz

import (
	"context"

	"github.com/lk2023060901/scholar-ai/internal/ai/provider/types"
)

// ChatModel 聊天模型
type ChatModel interface {
	CreateChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (*types.ChatCompletionResponse, error)
}

// TaskRunner 并发执行 n 个任务，返回第一个错误
type TaskRunner interface {
	Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// sequentialRunner 没有配置 worker pool 时顺序执行
type sequentialRunner struct{}

func (sequentialRunner) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// GenerationConfig 回答生成参数
type GenerationConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

func (g GenerationConfig) request(messages ...types.Message) types.ChatCompletionRequest {
	temperature := g.Temperature
	return types.ChatCompletionRequest{
		Model:       g.Model,
		Messages:    messages,
		MaxTokens:   g.MaxTokens,
		Temperature: &temperature,
	}
}
