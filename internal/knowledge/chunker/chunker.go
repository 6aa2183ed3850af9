package chunker

import (
	"context"
	"unicode/utf8"
)

// Chunker 文本分块接口
type Chunker interface {
	// Chunk 将文本分块
	Chunk(ctx context.Context, text string) ([]*TextChunk, error)

	// ChunkSize 返回分块大小
	ChunkSize() int

	// ChunkOverlap 返回分块重叠大小
	ChunkOverlap() int
}

// TextChunk 文本分块
type TextChunk struct {
	Index      int    // 块序号（从 0 开始）
	Content    string // 块内容
	TokenCount int    // Token 数量，未配置计数器时为 0
}

// Option 分块器选项
type Option func(*options)

type options struct {
	counter TokenCounter
}

// WithTokenCounter 为每个分块统计 token 数
func WithTokenCounter(counter TokenCounter) Option {
	return func(o *options) {
		o.counter = counter
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) count(text string) int {
	if o.counter == nil {
		return 0
	}
	return o.counter.Count(text)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
