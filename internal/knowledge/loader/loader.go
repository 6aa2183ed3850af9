// Package loader 读取国家资料文本文件
package loader

import (
	"context"
	"io"
	"strings"
)

// Metadata keys
const (
	MetaLoader     = "loader"
	MetaSourceFile = "source_file"
	MetaName       = "name"
)

// Loader 文档加载器接口
type Loader interface {
	// Load 加载文档内容
	Load(ctx context.Context, reader io.Reader) (*Document, error)

	// Extensions 返回支持的文件扩展名（小写，带点）
	Extensions() []string
}

// Document 加载后的文档
type Document struct {
	Content  string            // 文档文本内容
	Metadata map[string]string // 文档元数据
}

// Clean 去除首尾空白，换行替换为空格并删除回车
func Clean(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "\r", "")
}
