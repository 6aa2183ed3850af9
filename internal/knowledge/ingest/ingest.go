// Package ingest 批量处理学校数据目录
package ingest

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

// RecordBuilder 单文件分块构建
type RecordBuilder interface {
	Build(ctx context.Context, path string) ([]types.Chunk, error)
}

// FileResult 成功处理的文件
type FileResult struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
}

// FileFailure 处理失败的文件
type FileFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Result 一次导入的结果
type Result struct {
	Chunks     []types.Chunk
	Files      []FileResult
	Failures   []FileFailure
	Diagnostic string
}

// Ingestor 目录导入器
type Ingestor struct {
	builder RecordBuilder
	logger  *logger.Logger
}

// New 创建导入器
func New(builder RecordBuilder, log *logger.Logger) *Ingestor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Ingestor{builder: builder, logger: log.Named("ingest")}
}

// Ingest 处理目录下所有 JSON 文件（不递归，按文件名排序），单个文件失败不影响其他文件
func (i *Ingestor) Ingest(ctx context.Context, dir string) (*Result, error) {
	result := &Result{Chunks: []types.Chunk{}}

	files, err := ListJSONFiles(dir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			result.Diagnostic = fmt.Sprintf("directory %s does not exist", dir)
			i.logger.Warn("schools directory not found", zap.String("dir", dir))
			return result, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(files) == 0 {
		result.Diagnostic = fmt.Sprintf("no JSON files found in %s", dir)
		i.logger.Warn("no JSON files found", zap.String("dir", dir))
		return result, nil
	}

	i.logger.Info("found JSON files", zap.String("dir", dir), zap.Int("count", len(files)))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		chunks, err := i.builder.Build(ctx, path)
		if err != nil {
			i.logger.Error("failed to process file", zap.String("file", path), zap.Error(err))
			result.Failures = append(result.Failures, FileFailure{File: path, Error: err.Error()})
			continue
		}

		i.logger.Info("processed file", zap.String("file", filepath.Base(path)), zap.Int("chunks", len(chunks)))
		result.Files = append(result.Files, FileResult{File: path, Chunks: len(chunks)})
		result.Chunks = append(result.Chunks, chunks...)
	}

	return result, nil
}

// ListJSONFiles 列出目录下的 .json 文件，按名称排序
func ListJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
