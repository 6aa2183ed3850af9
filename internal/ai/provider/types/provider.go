package types

import "context"

// Provider 聊天模型接口（基于 OpenAI 协议）
type Provider interface {
	// CreateChatCompletion 创建聊天补全（同步）
	CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)

	// Name 返回 Provider 名称
	Name() string
}
