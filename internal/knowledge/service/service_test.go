package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/scholar-ai/internal/knowledge/biz"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/types"
	apperrors "github.com/lk2023060901/scholar-ai/internal/pkg/errors"
	"github.com/lk2023060901/scholar-ai/internal/pkg/metrics"
	"github.com/lk2023060901/scholar-ai/internal/pkg/response"
)

type fakeQuery struct {
	lastReq      *types.QueryRequest
	answer       *types.Answer
	err          error
	universities []string
	listErr      error
}

func (f *fakeQuery) Answer(_ context.Context, req *types.QueryRequest) (*types.Answer, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	if req.Question == "" {
		return &types.Answer{Answer: biz.EmptyQuestionAnswer, Sources: []types.Source{}, Error: biz.NoQuestionError}, nil
	}
	return f.answer, nil
}

func (f *fakeQuery) Universities(context.Context) ([]string, error) {
	return f.universities, f.listErr
}

func (f *fakeQuery) Sections(context.Context) ([]string, error) {
	return []string{"Cost", "Programs"}, f.listErr
}

type fakeCountry struct {
	lastReq *types.CountryQueryRequest
}

func (f *fakeCountry) Answer(_ context.Context, req *types.CountryQueryRequest) (*types.CountryAnswer, error) {
	f.lastReq = req
	return &types.CountryAnswer{Answer: "Apply for a study permit.", Sources: []types.CountrySource{{Country: req.Country, Score: 0.8}}}, nil
}

func newRouter(q QueryUseCase, c CountryUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m := metrics.NewRAGMetrics(metrics.NewRegistry())
	NewQueryService(q, m).RegisterRoutes(r)
	NewCountryService(c, m).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func TestHealth(t *testing.T) {
	status, body := do(t, newRouter(&fakeQuery{}, &fakeCountry{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"status": "healthy", "service": "Scholar AI RAG", "version": "2.0"}, body)
}

func TestQuery(t *testing.T) {
	q := &fakeQuery{answer: &types.Answer{
		Answer:  "About $45,000.",
		Sources: []types.Source{{University: "Harvard University", Section: "Cost", Field: "cost", Score: 0.9, SourceFile: "data/harvard.json"}},
	}}
	r := newRouter(q, &fakeCountry{})

	status, body := do(t, r, http.MethodPost, "/query", `{"question": "Tuition?", "university": "Harvard University", "field": "cost"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "About $45,000.", body["answer"])
	_, hasError := body["error"]
	assert.False(t, hasError)

	sources := body["sources"].([]interface{})
	require.Len(t, sources, 1)
	assert.Equal(t, "data/harvard.json", sources[0].(map[string]interface{})["source_file"])

	require.NotNil(t, q.lastReq)
	assert.Equal(t, types.SearchFilter{University: "Harvard University", Field: "cost"}, q.lastReq.SearchFilter)
}

func TestQueryBadRequests(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		error string
	}{
		{"empty question", `{"question": ""}`, biz.NoQuestionError},
		{"missing question", `{}`, biz.NoQuestionError},
		{"not json", `question=hi`, noJSONError},
		{"empty body", ``, noJSONError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, newRouter(&fakeQuery{}, &fakeCountry{}), http.MethodPost, "/query", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.error, body["error"])
			assert.Equal(t, biz.EmptyQuestionAnswer, body["answer"])
			assert.Equal(t, []interface{}{}, body["sources"])
		})
	}
}

func TestQueryInternalError(t *testing.T) {
	q := &fakeQuery{err: apperrors.Wrap(errors.New("qdrant unavailable"), apperrors.ErrRetrievalFailed, "search")}
	status, body := do(t, newRouter(q, &fakeCountry{}), http.MethodPost, "/query", `{"question": "Tuition?"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, response.ProcessingFailedAnswer, body["answer"])
	assert.Equal(t, []interface{}{}, body["sources"])
	assert.Contains(t, body["error"], "Document retrieval failed")
}

func TestListEndpoints(t *testing.T) {
	r := newRouter(&fakeQuery{universities: []string{"Harvard University", "MIT"}}, &fakeCountry{})

	status, body := do(t, r, http.MethodGet, "/universities", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"Harvard University", "MIT"}, body["universities"])

	status, body = do(t, r, http.MethodGet, "/sections", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"Cost", "Programs"}, body["sections"])
}

func TestListEndpointsError(t *testing.T) {
	r := newRouter(&fakeQuery{listErr: apperrors.Wrap(errors.New("down"), apperrors.ErrVectorDBFailed)}, &fakeCountry{})

	status, body := do(t, r, http.MethodGet, "/universities", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, []interface{}{}, body["universities"])
	assert.NotEmpty(t, body["error"])
}

func TestCountryQuery(t *testing.T) {
	c := &fakeCountry{}
	status, body := do(t, newRouter(&fakeQuery{}, c), http.MethodPost, "/countries/query", `{"question": "Visa?", "country": "canada"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Apply for a study permit.", body["answer"])
	assert.Equal(t, &types.CountryQueryRequest{Question: "Visa?", Country: "canada"}, c.lastReq)

	status, _ = do(t, newRouter(&fakeQuery{}, c), http.MethodPost, "/countries/query", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}
