package chunker

import (
	"context"
	"fmt"
	"strings"
)

const (
	// DefaultParagraphSize 段落分块的默认字符上限
	DefaultParagraphSize = 1000

	paragraphSeparator = "\n\n"
)

// ParagraphChunker 按段落贪心合并的分块器，长度按字符（rune）计算，不重叠
type ParagraphChunker struct {
	size int
	opts options
}

// NewParagraphChunker 创建段落分块器，size <= 0 时使用默认值
func NewParagraphChunker(size int, opts ...Option) *ParagraphChunker {
	if size <= 0 {
		size = DefaultParagraphSize
	}
	return &ParagraphChunker{size: size, opts: applyOptions(opts)}
}

// Chunk 将文本分块
func (c *ParagraphChunker) Chunk(ctx context.Context, text string) ([]*TextChunk, error) {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return []*TextChunk{}, nil
	}

	var (
		parts   []string
		current string
	)
	flush := func() {
		if current != "" {
			parts = append(parts, current)
			current = ""
		}
	}

	for _, p := range paragraphs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("paragraph chunking cancelled: %w", err)
		}

		// 单个段落超长时按词硬切分
		if runeLen(p) > c.size {
			flush()
			parts = append(parts, splitWords(p, c.size)...)
			continue
		}

		candidate := p
		if current != "" {
			candidate = current + paragraphSeparator + p
		}
		if runeLen(candidate) <= c.size {
			current = candidate
			continue
		}
		flush()
		current = p
	}
	flush()

	chunks := make([]*TextChunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, &TextChunk{
			Index:      i,
			Content:    part,
			TokenCount: c.opts.count(part),
		})
	}
	return chunks, nil
}

// ChunkSize 返回分块大小
func (c *ParagraphChunker) ChunkSize() int {
	return c.size
}

// ChunkOverlap 段落分块不重叠
func (c *ParagraphChunker) ChunkOverlap() int {
	return 0
}

// splitParagraphs 优先按空行切分，只有一段时退化为按换行切分
func splitParagraphs(text string) []string {
	paragraphs := nonBlank(strings.Split(text, paragraphSeparator))
	if len(paragraphs) <= 1 {
		paragraphs = nonBlank(strings.Split(text, "\n"))
	}
	return paragraphs
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitWords 按词边界切分，单词本身超长时按字符切分
func splitWords(text string, size int) []string {
	var (
		parts   []string
		current strings.Builder
		length  int
	)
	for _, word := range strings.Fields(text) {
		for runeLen(word) > size {
			if length > 0 {
				parts = append(parts, current.String())
				current.Reset()
				length = 0
			}
			r := []rune(word)
			parts = append(parts, string(r[:size]))
			word = string(r[size:])
		}
		if word == "" {
			continue
		}

		wl := runeLen(word)
		if length > 0 && length+1+wl > size {
			parts = append(parts, current.String())
			current.Reset()
			length = 0
		}
		if length > 0 {
			current.WriteByte(' ')
			length++
		}
		current.WriteString(word)
		length += wl
	}
	if length > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
