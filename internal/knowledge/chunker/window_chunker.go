package chunker

import (
	"context"
	"fmt"
	"strings"
)

const (
	DefaultWindowSize    = 800
	DefaultWindowOverlap = 100
)

// WordWindowChunker 按词滑动窗口分块
type WordWindowChunker struct {
	size    int
	overlap int
	opts    options
}

// NewWordWindowChunker 创建滑动窗口分块器
func NewWordWindowChunker(size, overlap int, opts ...Option) (*WordWindowChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive")
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap cannot be negative")
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be less than chunk size")
	}
	return &WordWindowChunker{size: size, overlap: overlap, opts: applyOptions(opts)}, nil
}

// Chunk 将文本分块，最后一个窗口以文本结尾为终点
func (c *WordWindowChunker) Chunk(ctx context.Context, text string) ([]*TextChunk, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []*TextChunk{}, nil
	}

	step := c.size - c.overlap
	chunks := make([]*TextChunk, 0, WindowCount(len(words), c.size, c.overlap))
	for start := 0; ; start += step {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("window chunking cancelled: %w", err)
		}

		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		content := strings.Join(words[start:end], " ")
		chunks = append(chunks, &TextChunk{
			Index:      len(chunks),
			Content:    content,
			TokenCount: c.opts.count(content),
		})
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}

// ChunkSize 返回分块大小
func (c *WordWindowChunker) ChunkSize() int {
	return c.size
}

// ChunkOverlap 返回分块重叠大小
func (c *WordWindowChunker) ChunkOverlap() int {
	return c.overlap
}

// WindowCount n 个词产生的窗口数 ceil((n-overlap)/(size-overlap))
func WindowCount(n, size, overlap int) int {
	if n <= 0 {
		return 0
	}
	if n <= size {
		return 1
	}
	step := size - overlap
	return (n - overlap + step - 1) / step
}
