package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse 模型没有返回任何选项
var ErrEmptyResponse = errors.New("empty completion response")

// ProviderError Provider 错误
type ProviderError struct {
	Provider   string // Provider 名称
	StatusCode int    // HTTP 状态码，网络错误时为 0
	Message    string // 错误消息
	Err        error  // 原始错误
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Message, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable 限流与服务端错误可重试
func (e *ProviderError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// NewProviderError 创建 Provider 错误
func NewProviderError(provider, message string, statusCode int, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}
