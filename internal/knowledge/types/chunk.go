package types

import (
	"fmt"
	"strings"
)

// Chunk 检索单元：格式化后的文本及其元数据
type Chunk struct {
	UniversityName string `json:"university_name"`
	SectionType    string `json:"section_type"`
	FieldName      string `json:"field_name"`
	Content        string `json:"content"`
	FullContext    string `json:"full_context"`
	SourceFile     string `json:"source_file"`

	// ChunkIndex 仅在字段被拆分时设置，表示在兄弟子块中的位置（从 0 开始）
	ChunkIndex *int `json:"chunk_index,omitempty"`

	// TokenCount 内容的 token 数，未配置计数器时为 0
	TokenCount int `json:"token_count,omitempty"`
}

// NewChunk 创建分块并生成 FullContext
func NewChunk(university, section, field, content, sourceFile string) Chunk {
	return Chunk{
		UniversityName: university,
		SectionType:    section,
		FieldName:      field,
		Content:        content,
		FullContext:    FullContext(university, section, content),
		SourceFile:     sourceFile,
	}
}

// FullContext 生成用于向量化的完整上下文
func FullContext(university, section, content string) string {
	return fmt.Sprintf("%s - %s: %s", university, section, content)
}

// PartSection 拆分后的 section 名称，part 从 1 开始
func PartSection(section string, part int) string {
	return fmt.Sprintf("%s (Part %d)", section, part)
}

// Validate 五个必填字段去除空白后均不能为空
func (c Chunk) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"university_name", c.UniversityName},
		{"section_type", c.SectionType},
		{"field_name", c.FieldName},
		{"content", c.Content},
		{"source_file", c.SourceFile},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("chunk field %s is blank", f.name)
		}
	}
	return nil
}

// Index 返回 ChunkIndex，未设置时返回 fallback
func (c Chunk) Index(fallback int) int {
	if c.ChunkIndex != nil {
		return *c.ChunkIndex
	}
	return fallback
}

// CountryChunk 国家模式（纯文本）的分块
type CountryChunk struct {
	Country    string `json:"country"`
	Content    string `json:"content"`
	ChunkIndex int    `json:"chunk_index"`
}
