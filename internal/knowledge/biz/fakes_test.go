package biz

import (
	"context"
	"sync"

	providertypes "github.com/lk2023060901/scholar-ai/internal/ai/provider/types"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/storage"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
)

type fakeEmbedder struct {
	mu      sync.Mutex
	err     error
	batches [][]string
	queries []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, text)
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return 2 }
func (f *fakeEmbedder) Model() string  { return "fake" }

type fakeStore struct {
	collection string
	hits       []types.SearchHit
	searchErr  error
	upsertErr  error
	distinct   map[string][]string

	recreated int
	ensured   int
	points    []*storage.Point
	searches  []*storage.SearchRequest
}

func (s *fakeStore) Collection() string { return s.collection }

func (s *fakeStore) EnsureCollection(context.Context) error {
	s.ensured++
	return nil
}

func (s *fakeStore) RecreateCollection(context.Context) error {
	s.recreated++
	s.points = nil
	return nil
}

func (s *fakeStore) CollectionExists(context.Context) (bool, error) { return true, nil }

func (s *fakeStore) Upsert(_ context.Context, points []*storage.Point) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.points = append(s.points, points...)
	return nil
}

func (s *fakeStore) Search(_ context.Context, req *storage.SearchRequest) ([]types.SearchHit, error) {
	s.searches = append(s.searches, req)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.hits, nil
}

func (s *fakeStore) DistinctValues(_ context.Context, key string, _ int) ([]string, error) {
	return s.distinct[key], nil
}

func (s *fakeStore) CollectionInfo(context.Context) (*storage.CollectionInfo, error) {
	return &storage.CollectionInfo{Name: s.collection, PointsCount: uint64(len(s.points))}, nil
}

func (s *fakeStore) HealthCheck(context.Context) error { return nil }
func (s *fakeStore) Close() error                      { return nil }

type fakeChat struct {
	answer   string
	err      error
	requests []providertypes.ChatCompletionRequest
}

func (c *fakeChat) CreateChatCompletion(_ context.Context, req providertypes.ChatCompletionRequest) (*providertypes.ChatCompletionResponse, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return &providertypes.ChatCompletionResponse{Content: c.answer}, nil
}
