// Package builder 将单个学校 JSON 记录转换为检索分块
package builder

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/chunker"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/formatter"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/jsonvalue"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	"github.com/lk2023060901/scholar-ai/internal/pkg/errors"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// ErrMalformedRecord 文件不是合法的 JSON 对象
var ErrMalformedRecord = stderrors.New("malformed university record")

// SplitMode 超长字段的处理方式
type SplitMode string

const (
	// SplitSupplement 保留完整分块，同时追加子分块
	SplitSupplement SplitMode = "supplement"
	// SplitReplace 只保留子分块
	SplitReplace SplitMode = "replace"
)

const (
	DefaultMaxChunkSize = 1200
	DefaultPartSize     = chunker.DefaultParagraphSize
)

// Config 构建器配置
type Config struct {
	MaxChunkSize int
	PartSize     int
	SplitMode    SplitMode
	Counter      chunker.TokenCounter
}

// Builder 学校记录分块构建器
type Builder struct {
	cfg      Config
	splitter *chunker.ParagraphChunker
	logger   *logger.Logger
}

// New 创建构建器，未设置的配置项使用默认值
func New(cfg Config, log *logger.Logger) *Builder {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = DefaultMaxChunkSize
	}
	if cfg.PartSize <= 0 {
		cfg.PartSize = DefaultPartSize
	}
	if cfg.SplitMode == "" {
		cfg.SplitMode = SplitSupplement
	}
	if log == nil {
		log = logger.NewNop()
	}

	var opts []chunker.Option
	if cfg.Counter != nil {
		opts = append(opts, chunker.WithTokenCounter(cfg.Counter))
	}

	return &Builder{
		cfg:      cfg,
		splitter: chunker.NewParagraphChunker(cfg.PartSize, opts...),
		logger:   log.Named("builder"),
	}
}

// Build 读取并解析文件，返回通过校验的分块
func (b *Builder) Build(ctx context.Context, path string) ([]types.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIngestReadFailed, path)
	}
	return b.BuildRecord(ctx, data, path)
}

// BuildRecord 从 JSON 内容构建分块，sourceFile 记录在每个分块上
func (b *Builder) BuildRecord(ctx context.Context, data []byte, sourceFile string) ([]types.Chunk, error) {
	value, err := jsonvalue.Parse(data)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: %v", ErrMalformedRecord, err), errors.ErrIngestMalformedJSON, sourceFile)
	}
	record, ok := value.(jsonvalue.Object)
	if !ok {
		return nil, errors.Wrap(
			fmt.Errorf("%w: top level is %s, want object", ErrMalformedRecord, value.Kind()),
			errors.ErrIngestMalformedJSON, sourceFile)
	}

	university := universityName(record)
	chunks := make([]types.Chunk, 0, len(types.FieldSections))

	for _, fs := range types.FieldSections {
		v, ok := record.Get(fs.Field)
		if !ok || v.IsEmpty() {
			continue
		}

		content := formatter.Format(fs.Field, v)
		if strings.TrimSpace(content) == "" {
			continue
		}

		base := types.NewChunk(university, fs.Section, fs.Field, content, sourceFile)
		base.TokenCount = b.count(content)

		if utf8.RuneCountInString(content) <= b.cfg.MaxChunkSize {
			chunks = append(chunks, base)
			continue
		}

		parts, err := b.Split(ctx, content, university, fs.Section, fs.Field, sourceFile)
		if err != nil {
			return nil, err
		}
		if b.cfg.SplitMode == SplitSupplement {
			chunks = append(chunks, base)
		}
		chunks = append(chunks, parts...)
	}

	valid := chunks[:0]
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			b.logger.Debug("drop invalid chunk",
				zap.String("source_file", sourceFile),
				zap.String("field", c.FieldName),
				zap.Error(err))
			continue
		}
		valid = append(valid, c)
	}
	return valid, nil
}

// Split 将超长内容切分为带 "(Part N)" 后缀的子分块
func (b *Builder) Split(ctx context.Context, content, university, section, field, sourceFile string) ([]types.Chunk, error) {
	parts, err := b.splitter.Chunk(ctx, content)
	if err != nil {
		return nil, err
	}

	chunks := make([]types.Chunk, 0, len(parts))
	for _, p := range parts {
		idx := p.Index
		c := types.NewChunk(university, types.PartSection(section, idx+1), field, p.Content, sourceFile)
		c.ChunkIndex = &idx
		c.TokenCount = p.TokenCount
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (b *Builder) count(text string) int {
	if b.cfg.Counter == nil {
		return 0
	}
	return b.cfg.Counter.Count(text)
}

func universityName(record jsonvalue.Object) string {
	v, ok := record.Get(types.UniversityFieldKey)
	if !ok || v.IsEmpty() {
		return types.UnknownUniversity
	}
	name := strings.TrimSpace(formatter.Format(types.UniversityFieldKey, v))
	if name == "" {
		return types.UnknownUniversity
	}
	return name
}
