package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
	pkgqdrant "github.com/lk2023060901/scholar-ai/internal/pkg/qdrant"
)

const (
	DefaultUpsertBatchSize = 100
	DefaultScrollLimit     = 1000
)

// QdrantStoreConfig Qdrant 存储配置
type QdrantStoreConfig struct {
	Collection string
	Dimension  int
	BatchSize  int
}

// QdrantStore Qdrant 向量存储实现，距离度量为 Cosine
type QdrantStore struct {
	client     *pkgqdrant.Client
	collection string
	dimension  int
	batchSize  int
	logger     *logger.Logger
}

// NewQdrantStore 创建 Qdrant 向量存储
func NewQdrantStore(client *pkgqdrant.Client, cfg QdrantStoreConfig, log *logger.Logger) (*QdrantStore, error) {
	if client == nil {
		return nil, fmt.Errorf("qdrant client is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultUpsertBatchSize
	}
	if log == nil {
		log = logger.L()
	}

	return &QdrantStore{
		client:     client,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		batchSize:  cfg.BatchSize,
		logger:     log.With(zap.String("collection", cfg.Collection)),
	}, nil
}

// Collection 返回集合名称
func (s *QdrantStore) Collection() string {
	return s.collection
}

// CollectionExists 检查集合是否存在
func (s *QdrantStore) CollectionExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.client.Do(ctx, "CollectionExists", func(ctx context.Context, cli *qdrant.Client) error {
		var err error
		exists, err = cli.CollectionExists(ctx, s.collection)
		return err
	})
	return exists, pkgqdrant.WrapError("CollectionExists", err, s.collection)
}

// EnsureCollection 集合不存在时创建
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.CollectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.createCollection(ctx)
}

// RecreateCollection 删除并重新创建集合
func (s *QdrantStore) RecreateCollection(ctx context.Context) error {
	exists, err := s.CollectionExists(ctx)
	if err != nil {
		return err
	}

	if exists {
		err := s.client.Do(ctx, "DeleteCollection", func(ctx context.Context, cli *qdrant.Client) error {
			return cli.DeleteCollection(ctx, s.collection)
		})
		switch {
		case pkgqdrant.IsNotFound(err):
			s.logger.Debug("collection already deleted")
		case err != nil:
			return pkgqdrant.WrapError("DeleteCollection", err, s.collection)
		default:
			s.logger.Info("collection deleted")
		}
	}

	return s.createCollection(ctx)
}

func (s *QdrantStore) createCollection(ctx context.Context) error {
	err := s.client.Do(ctx, "CreateCollection", func(ctx context.Context, cli *qdrant.Client) error {
		return cli.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(s.dimension),
				Distance: qdrant.Distance_Cosine,
			}),
		})
	})
	if err != nil {
		return pkgqdrant.WrapError("CreateCollection", err, s.collection)
	}

	s.logger.Info("collection created", zap.Int("dimension", s.dimension))
	return nil
}

// Upsert 按 batchSize 顺序分批写入
func (s *QdrantStore) Upsert(ctx context.Context, points []*Point) error {
	if len(points) == 0 {
		return nil
	}

	qpoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return fmt.Errorf("point %s has dimension %d, want %d", p.ID, len(p.Vector), s.dimension)
		}
		qpoints = append(qpoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: toPayload(p.Payload),
		})
	}

	for start := 0; start < len(qpoints); start += s.batchSize {
		end := start + s.batchSize
		if end > len(qpoints) {
			end = len(qpoints)
		}

		batch := qpoints[start:end]
		err := s.client.Do(ctx, "Upsert", func(ctx context.Context, cli *qdrant.Client) error {
			_, err := cli.Upsert(ctx, &qdrant.UpsertPoints{
				CollectionName: s.collection,
				Wait:           qdrant.PtrOf(true),
				Points:         batch,
			})
			return err
		})
		if err != nil {
			return pkgqdrant.WrapError("Upsert", fmt.Errorf("batch [%d, %d): %w", start, end, err), s.collection)
		}

		s.logger.Debug("points upserted", zap.Int("batch_start", start), zap.Int("batch_end", end))
	}

	return nil
}

// Search 向量搜索，Must 中的条件全部满足
func (s *QdrantStore) Search(ctx context.Context, req *SearchRequest) ([]types.SearchHit, error) {
	if req == nil || len(req.Vector) == 0 {
		return nil, fmt.Errorf("query vector is required")
	}

	limit := uint64(req.Limit)
	if limit == 0 {
		limit = 10
	}

	query := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(req.Vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         buildFilter(req.Must),
	}
	if req.ScoreThreshold > 0 {
		threshold := req.ScoreThreshold
		query.ScoreThreshold = &threshold
	}

	var results []*qdrant.ScoredPoint
	err := s.client.Do(ctx, "Query", func(ctx context.Context, cli *qdrant.Client) error {
		var err error
		results, err = cli.Query(ctx, query)
		return err
	})
	if err != nil {
		return nil, pkgqdrant.WrapError("Query", err, s.collection)
	}

	hits := make([]types.SearchHit, 0, len(results))
	for _, point := range results {
		hits = append(hits, types.SearchHit{
			ID:      pointID(point.GetId()),
			Score:   point.GetScore(),
			Payload: fromPayload(point.GetPayload()),
		})
	}
	return hits, nil
}

// DistinctValues 扫描最多 scrollLimit 个点，返回字段的去重排序值
func (s *QdrantStore) DistinctValues(ctx context.Context, key string, scrollLimit int) ([]string, error) {
	if scrollLimit <= 0 {
		scrollLimit = DefaultScrollLimit
	}

	var points []*qdrant.RetrievedPoint
	err := s.client.Do(ctx, "Scroll", func(ctx context.Context, cli *qdrant.Client) error {
		var err error
		points, err = cli.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          qdrant.PtrOf(uint32(scrollLimit)),
			WithPayload:    qdrant.NewWithPayloadInclude(key),
		})
		return err
	})
	if err != nil {
		return nil, pkgqdrant.WrapError("Scroll", err, s.collection)
	}

	seen := make(map[string]struct{})
	for _, p := range points {
		v, ok := p.GetPayload()[key]
		if !ok {
			continue
		}
		if str := valueString(v); str != "" {
			seen[str] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// CollectionInfo 返回集合统计信息
func (s *QdrantStore) CollectionInfo(ctx context.Context) (*CollectionInfo, error) {
	var info *qdrant.CollectionInfo
	err := s.client.Do(ctx, "GetCollectionInfo", func(ctx context.Context, cli *qdrant.Client) error {
		var err error
		info, err = cli.GetCollectionInfo(ctx, s.collection)
		return err
	})
	if err != nil {
		return nil, pkgqdrant.WrapError("GetCollectionInfo", err, s.collection)
	}

	return &CollectionInfo{
		Name:          s.collection,
		PointsCount:   info.GetPointsCount(),
		SegmentsCount: info.GetSegmentsCount(),
		Status:        strings.ToLower(info.GetStatus().String()),
	}, nil
}

// HealthCheck 检查服务是否可用
func (s *QdrantStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.HealthCheck(ctx)
	return err
}

// Close 关闭底层客户端
func (s *QdrantStore) Close() error {
	if s.client.IsClosed() {
		return nil
	}
	return s.client.Close()
}

func buildFilter(conds []types.Condition) *qdrant.Filter {
	if len(conds) == 0 {
		return nil
	}
	must := make([]*qdrant.Condition, 0, len(conds))
	for _, c := range conds {
		must = append(must, qdrant.NewMatch(c.Key, c.Value))
	}
	return &qdrant.Filter{Must: must}
}

func toPayload(m map[string]interface{}) map[string]*qdrant.Value {
	payload := make(map[string]*qdrant.Value, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			payload[k] = qdrant.NewValueString(val)
		case int:
			payload[k] = qdrant.NewValueInt(int64(val))
		case int64:
			payload[k] = qdrant.NewValueInt(val)
		case float64:
			payload[k] = qdrant.NewValueDouble(val)
		case float32:
			payload[k] = qdrant.NewValueDouble(float64(val))
		case bool:
			payload[k] = qdrant.NewValueBool(val)
		case nil:
			payload[k] = qdrant.NewValueNull()
		default:
			payload[k] = qdrant.NewValueString(fmt.Sprintf("%v", val))
		}
	}
	return payload
}

func fromPayload(payload map[string]*qdrant.Value) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		out[k] = valueString(v)
	}
	return out
}

func valueString(v *qdrant.Value) string {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return strconv.FormatInt(kind.IntegerValue, 10)
	case *qdrant.Value_DoubleValue:
		return strconv.FormatFloat(kind.DoubleValue, 'f', -1, 64)
	case *qdrant.Value_BoolValue:
		return strconv.FormatBool(kind.BoolValue)
	default:
		return ""
	}
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}
