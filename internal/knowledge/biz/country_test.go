package biz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/chunker"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/loader"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	apperrors "github.com/lk2023060901/scholar-ai/internal/pkg/errors"
)

func newCountry(t *testing.T, store *fakeStore, chat *fakeChat) *CountryUseCase {
	t.Helper()
	ck, err := chunker.NewWordWindowChunker(4, 1)
	require.NoError(t, err)
	return NewCountryUseCase(loader.NewFactory(), ck, store, &fakeEmbedder{}, nil, chat,
		CountryConfig{Generation: GenerationConfig{Model: "gpt-4", MaxTokens: 512, Temperature: 0.3}}, nil)
}

func TestCountryIngest(t *testing.T) {
	dir := t.TempDir()
	canada := filepath.Join(dir, "canada.txt")
	require.NoError(t, os.WriteFile(canada, []byte("  one two\nthree four\r\nfive six seven  "), 0o644))
	japan := filepath.Join(dir, "japan.md")
	require.NoError(t, os.WriteFile(japan, []byte("# Japan\n\nStudent visa"), 0o644))

	store := &fakeStore{collection: "scholar-ai-countries"}
	result, err := newCountry(t, store, &fakeChat{}).Ingest(context.Background(), []string{canada, japan}, "")
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, CountryFile{File: canada, Country: "canada", Chunks: 2}, result.Files[0])
	assert.Equal(t, "japan", result.Files[1].Country)
	assert.Equal(t, 1, store.recreated)
	assert.Equal(t, result.Index.Points, len(store.points))

	assert.Equal(t, "one two three four", store.points[0].Payload[types.PayloadContent])
	assert.Equal(t, "four five six seven", store.points[1].Payload[types.PayloadContent])
	assert.Equal(t, "canada", store.points[0].Payload[types.PayloadCountry])
}

func TestCountryIngestExplicitCountry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("study permit"), 0o644))

	store := &fakeStore{}
	result, err := newCountry(t, store, &fakeChat{}).Ingest(context.Background(), []string{path}, "Canada")
	require.NoError(t, err)
	assert.Equal(t, "Canada", result.Files[0].Country)
	assert.Equal(t, "Canada", store.points[0].Payload[types.PayloadCountry])
}

func TestCountryIngestMissingFile(t *testing.T) {
	store := &fakeStore{}
	_, err := newCountry(t, store, &fakeChat{}).Ingest(context.Background(), []string{filepath.Join(t.TempDir(), "none.txt")}, "")
	assert.True(t, apperrors.Is(err, apperrors.ErrIngestReadFailed))
	assert.Equal(t, 0, store.recreated)
}

func TestCountryAnswer(t *testing.T) {
	store := &fakeStore{hits: []types.SearchHit{
		{Score: 0.7, Payload: map[string]string{types.PayloadCountry: "canada", types.PayloadContent: "Study permit required"}},
		{Score: 0.6, Payload: map[string]string{types.PayloadCountry: "canada", types.PayloadContent: "Work 20 hours"}},
	}}
	chat := &fakeChat{answer: " You need a study permit. "}

	answer, err := newCountry(t, store, chat).Answer(context.Background(), &types.CountryQueryRequest{Question: "Visa?", Country: "canada"})
	require.NoError(t, err)
	assert.Equal(t, "You need a study permit.", answer.Answer)
	assert.Equal(t, []types.CountrySource{{Country: "canada", Score: 0.7}, {Country: "canada", Score: 0.6}}, answer.Sources)

	require.Len(t, store.searches, 1)
	assert.Equal(t, DefaultCountryLimit, store.searches[0].Limit)
	assert.Equal(t, []types.Condition{{Key: types.PayloadCountry, Value: "canada"}}, store.searches[0].Must)

	require.Len(t, chat.requests, 1)
	user := chat.requests[0].Messages[1].Content
	assert.True(t, strings.Contains(user, "canada: Study permit required\ncanada: Work 20 hours"))
	assert.Contains(t, user, "Question: Visa?")
}

func TestCountryAnswerEdgeCases(t *testing.T) {
	t.Run("blank question", func(t *testing.T) {
		answer, err := newCountry(t, &fakeStore{}, &fakeChat{}).Answer(context.Background(), &types.CountryQueryRequest{Question: " "})
		require.NoError(t, err)
		assert.Equal(t, NoQuestionError, answer.Error)
	})

	t.Run("no hits", func(t *testing.T) {
		chat := &fakeChat{}
		answer, err := newCountry(t, &fakeStore{}, chat).Answer(context.Background(), &types.CountryQueryRequest{Question: "Visa?"})
		require.NoError(t, err)
		assert.Equal(t, NotFoundAnswer, answer.Answer)
		assert.Empty(t, chat.requests)
	})

	t.Run("search failure", func(t *testing.T) {
		_, err := newCountry(t, &fakeStore{searchErr: errors.New("boom")}, &fakeChat{}).Answer(context.Background(), &types.CountryQueryRequest{Question: "Visa?"})
		assert.True(t, apperrors.Is(err, apperrors.ErrRetrievalFailed))
	})
}
