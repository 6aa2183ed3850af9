package service

import "github.com/lk2023060901/scholar-ai/internal/knowledge/types"

// 服务信息
const (
	ServiceName    = "Scholar AI RAG"
	ServiceVersion = "2.0"
)

// QueryRequest 问答请求，过滤条件均可选
type QueryRequest struct {
	Question   string `json:"question"`
	University string `json:"university"`
	Section    string `json:"section"`
	Field      string `json:"field"`
}

func (r *QueryRequest) toBiz() *types.QueryRequest {
	return &types.QueryRequest{
		Question: r.Question,
		SearchFilter: types.SearchFilter{
			University: r.University,
			Section:    r.Section,
			Field:      r.Field,
		},
	}
}

// CountryQueryRequest 国家模式问答请求
type CountryQueryRequest struct {
	Question string `json:"question"`
	Country  string `json:"country"`
}

// UniversitiesResponse 大学列表
type UniversitiesResponse struct {
	Universities []string `json:"universities"`
}

// SectionsResponse 章节列表
type SectionsResponse struct {
	Sections []string `json:"sections"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
