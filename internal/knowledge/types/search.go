package types

import "strings"

// Payload keys written to the vector store
const (
	PayloadUniversityName = "university_name"
	PayloadSectionType    = "section_type"
	PayloadFieldName      = "field_name"
	PayloadContent        = "content"
	PayloadSourceFile     = "source_file"
	PayloadChunkIndex     = "chunk_index"
	PayloadCountry        = "country"
)

// SearchFilter 等值过滤条件，空字符串表示不过滤
type SearchFilter struct {
	University string `json:"university,omitempty"`
	Section    string `json:"section,omitempty"`
	Field      string `json:"field,omitempty"`
}

// Condition payload 等值匹配条件
type Condition struct {
	Key   string
	Value string
}

// Conditions 返回非空白的条件，顺序固定
func (f SearchFilter) Conditions() []Condition {
	var conds []Condition
	if v := strings.TrimSpace(f.University); v != "" {
		conds = append(conds, Condition{Key: PayloadUniversityName, Value: v})
	}
	if v := strings.TrimSpace(f.Section); v != "" {
		conds = append(conds, Condition{Key: PayloadSectionType, Value: v})
	}
	if v := strings.TrimSpace(f.Field); v != "" {
		conds = append(conds, Condition{Key: PayloadFieldName, Value: v})
	}
	return conds
}

// IsEmpty 没有任何过滤条件
func (f SearchFilter) IsEmpty() bool {
	return len(f.Conditions()) == 0
}

// SearchHit 向量检索命中
type SearchHit struct {
	ID      string
	Score   float32
	Payload map[string]string
}

// Get 读取 payload 字段，不存在时返回空字符串
func (h SearchHit) Get(key string) string {
	if h.Payload == nil {
		return ""
	}
	return h.Payload[key]
}

// QueryRequest 问答请求
type QueryRequest struct {
	Question string `json:"question"`
	SearchFilter
}

// Source 回答引用的来源
type Source struct {
	University string  `json:"university"`
	Section    string  `json:"section"`
	Field      string  `json:"field"`
	Score      float32 `json:"score"`
	SourceFile string  `json:"source_file"`
}

// Answer 问答结果
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Error   string   `json:"error,omitempty"`
}

// CountryQueryRequest 国家模式问答请求
type CountryQueryRequest struct {
	Question string `json:"question"`
	Country  string `json:"country,omitempty"`
}

// CountrySource 国家模式回答引用的来源
type CountrySource struct {
	Country string  `json:"country"`
	Score   float32 `json:"score"`
}

// CountryAnswer 国家模式问答结果
type CountryAnswer struct {
	Answer  string          `json:"answer"`
	Sources []CountrySource `json:"sources"`
	Error   string          `json:"error,omitempty"`
}
