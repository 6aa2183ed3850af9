package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry()
	hm := NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(Middleware(hm))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(Handler(reg)))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(hm.RequestsTotal.WithLabelValues("/health", http.MethodGet, "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hm.RequestsTotal.WithLabelValues("unknown", http.MethodGet, "4xx")))
	assert.Equal(t, 0.0, testutil.ToFloat64(hm.InflightRequests))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "scholar_ai_http_requests_total"))
}

func TestObserveQuery(t *testing.T) {
	m := NewRAGMetrics(NewRegistry())

	m.ObserveQuery("university", OutcomeAnswered, 0.2, 3)
	m.ObserveQuery("university", OutcomeAnswered, 0.1, 5)
	m.ObserveQuery("country", OutcomeInvalid, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueryTotal.WithLabelValues("university", OutcomeAnswered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueryTotal.WithLabelValues("country", OutcomeInvalid)))

	var nilMetrics *RAGMetrics
	assert.NotPanics(t, func() { nilMetrics.ObserveQuery("university", OutcomeFailed, 1, 0) })
}
