package loader

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextLoader 纯文本加载器。
// 默认按 UTF-8 解码，带 BOM 时按 BOM 识别 UTF-8/UTF-16，非法字节替换为 U+FFFD。
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Load(_ context.Context, reader io.Reader) (*Document, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	content, err := io.ReadAll(transform.NewReader(reader, decoder))
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}

	return &Document{
		Content:  string(content),
		Metadata: map[string]string{MetaLoader: "text"},
	}, nil
}

func (l *TextLoader) Extensions() []string {
	return []string{".txt", ".text"}
}
