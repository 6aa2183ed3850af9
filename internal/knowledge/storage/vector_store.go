package storage

import (
	"context"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
)

// VectorStore 向量存储接口，每个实例绑定一个集合
type VectorStore interface {
	// Collection 返回集合名称
	Collection() string

	// EnsureCollection 集合不存在时创建
	EnsureCollection(ctx context.Context) error

	// RecreateCollection 删除并重新创建集合
	RecreateCollection(ctx context.Context) error

	// CollectionExists 检查集合是否存在
	CollectionExists(ctx context.Context) (bool, error)

	// Upsert 按批次写入点
	Upsert(ctx context.Context, points []*Point) error

	// Search 向量搜索
	Search(ctx context.Context, req *SearchRequest) ([]types.SearchHit, error)

	// DistinctValues 返回 payload 字段的去重排序值
	DistinctValues(ctx context.Context, key string, scrollLimit int) ([]string, error)

	// CollectionInfo 返回集合统计信息
	CollectionInfo(ctx context.Context) (*CollectionInfo, error)

	// HealthCheck 检查服务是否可用
	HealthCheck(ctx context.Context) error

	// Close 关闭连接
	Close() error
}

// Point 向量点
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]interface{}
}

// SearchRequest 向量搜索请求
type SearchRequest struct {
	Vector         []float32
	Must           []types.Condition
	Limit          int
	ScoreThreshold float32
}

// CollectionInfo 集合统计信息
type CollectionInfo struct {
	Name          string `json:"name"`
	PointsCount   uint64 `json:"points_count"`
	SegmentsCount uint64 `json:"segments_count"`
	Status        string `json:"status"`
}
