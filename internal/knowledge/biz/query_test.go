package biz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	providertypes "github.com/lk2023060901/scholar-ai/internal/ai/provider/types"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	apperrors "github.com/lk2023060901/scholar-ai/internal/pkg/errors"
)

func harvardHit(score float32) types.SearchHit {
	return types.SearchHit{
		ID:    "1",
		Score: score,
		Payload: map[string]string{
			types.PayloadUniversityName: "Harvard University",
			types.PayloadSectionType:    "Cost",
			types.PayloadFieldName:      "cost",
			types.PayloadContent:        "Tuition: $45,000",
			types.PayloadSourceFile:     "data/harvard.json",
		},
	}
}

func newQuery(store *fakeStore, emb *fakeEmbedder, chat *fakeChat) *QueryUseCase {
	return NewQueryUseCase(store, emb, chat, QueryConfig{
		Limit:          10,
		ScoreThreshold: 0.5,
		AnswerLanguage: "Vietnamese",
		Generation:     GenerationConfig{Model: "gpt-3.5-turbo", MaxTokens: 800, Temperature: 0.3},
	}, nil)
}

func TestAnswerBlankQuestion(t *testing.T) {
	for _, q := range []string{"", "   \n\t"} {
		store, emb, chat := &fakeStore{}, &fakeEmbedder{}, &fakeChat{}
		answer, err := newQuery(store, emb, chat).Answer(context.Background(), &types.QueryRequest{Question: q})
		require.NoError(t, err)
		assert.Equal(t, EmptyQuestionAnswer, answer.Answer)
		assert.Equal(t, NoQuestionError, answer.Error)
		assert.NotNil(t, answer.Sources)
		assert.Empty(t, answer.Sources)
		assert.Empty(t, emb.queries)
		assert.Empty(t, store.searches)
	}
}

func TestAnswerNoHits(t *testing.T) {
	store, emb, chat := &fakeStore{}, &fakeEmbedder{}, &fakeChat{answer: "unused"}
	answer, err := newQuery(store, emb, chat).Answer(context.Background(), &types.QueryRequest{Question: "What is the tuition?"})
	require.NoError(t, err)
	assert.Equal(t, NotFoundAnswer, answer.Answer)
	assert.Empty(t, answer.Sources)
	assert.Empty(t, chat.requests)
}

func TestAnswerWithHits(t *testing.T) {
	second := harvardHit(0.61)
	second.Payload[types.PayloadFieldName] = ""
	second.Payload[types.PayloadContent] = "Room and board"
	store := &fakeStore{hits: []types.SearchHit{harvardHit(0.82), second}}
	emb, chat := &fakeEmbedder{}, &fakeChat{answer: "About $45,000 per year."}

	answer, err := newQuery(store, emb, chat).Answer(context.Background(), &types.QueryRequest{
		Question:     "  What is the tuition at Harvard?  ",
		SearchFilter: types.SearchFilter{University: "Harvard University", Section: " ", Field: "cost"},
	})
	require.NoError(t, err)
	assert.Equal(t, "About $45,000 per year.", answer.Answer)
	assert.Empty(t, answer.Error)

	assert.Equal(t, []string{"What is the tuition at Harvard?"}, emb.queries)
	require.Len(t, store.searches, 1)
	search := store.searches[0]
	assert.Equal(t, 10, search.Limit)
	assert.InDelta(t, 0.5, search.ScoreThreshold, 1e-6)
	assert.Equal(t, []types.Condition{
		{Key: types.PayloadUniversityName, Value: "Harvard University"},
		{Key: types.PayloadFieldName, Value: "cost"},
	}, search.Must)

	assert.Equal(t, []types.Source{
		{University: "Harvard University", Section: "Cost", Field: "cost", Score: 0.82, SourceFile: "data/harvard.json"},
		{University: "Harvard University", Section: "Cost", Field: "", Score: 0.61, SourceFile: "data/harvard.json"},
	}, answer.Sources)

	require.Len(t, chat.requests, 1)
	req := chat.requests[0]
	assert.Equal(t, "gpt-3.5-turbo", req.Model)
	assert.Equal(t, 800, req.MaxTokens)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.3, *req.Temperature, 1e-6)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, providertypes.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Answer in Vietnamese")
	assert.Equal(t, providertypes.RoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content,
		"**Harvard University - Cost (cost):**\nTuition: $45,000\n\n**Harvard University - Cost:**\nRoom and board")
	assert.Contains(t, req.Messages[1].Content, "Answer the question: What is the tuition at Harvard?")
}

func TestAnswerGenerationFailure(t *testing.T) {
	store := &fakeStore{hits: []types.SearchHit{harvardHit(0.9)}}
	chat := &fakeChat{err: errors.New("quota exceeded")}

	answer, err := newQuery(store, &fakeEmbedder{}, chat).Answer(context.Background(), &types.QueryRequest{Question: "tuition?"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(answer.Answer, GenerationFailedPrefix))
	assert.Contains(t, answer.Answer, "quota exceeded")
	assert.Len(t, answer.Sources, 1)
}

func TestAnswerRetrievalFailure(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
		emb   *fakeEmbedder
	}{
		{"embedding", &fakeStore{}, &fakeEmbedder{err: errors.New("model offline")}},
		{"search", &fakeStore{searchErr: errors.New("collection missing")}, &fakeEmbedder{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{}
			_, err := newQuery(tt.store, tt.emb, chat).Answer(context.Background(), &types.QueryRequest{Question: "q"})
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrRetrievalFailed))
			assert.Empty(t, chat.requests)
		})
	}
}

func TestDistinctValues(t *testing.T) {
	store := &fakeStore{distinct: map[string][]string{
		types.PayloadUniversityName: {"Harvard University", "MIT"},
	}}
	uc := newQuery(store, &fakeEmbedder{}, &fakeChat{})

	universities, err := uc.Universities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Harvard University", "MIT"}, universities)

	sections, err := uc.Sections(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sections)
	assert.Empty(t, sections)
}

func TestContextBlock(t *testing.T) {
	assert.Equal(t, "**Harvard University - Cost (cost):**\nTuition: $45,000", ContextBlock(harvardHit(1)))
}
