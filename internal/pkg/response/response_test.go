package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lk2023060901/scholar-ai/internal/pkg/errors"
)

func record(t *testing.T, fn func(c *gin.Context)) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestOK(t *testing.T) {
	status, body := record(t, func(c *gin.Context) { OK(c, gin.H{"sections": []string{"Cost"}}) })
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"Cost"}, body["sections"])
}

func TestHandleError(t *testing.T) {
	err := apperrors.Wrap(errors.New("connection refused"), apperrors.ErrVectorDBFailed)
	status, body := record(t, func(c *gin.Context) { HandleError(c, err, gin.H{"universities": []string{}}) })

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, float64(apperrors.ErrVectorDBFailed), body["code"])
	assert.Equal(t, "Vector database operation failed: connection refused", body["error"])
	assert.Equal(t, []interface{}{}, body["universities"])
}

func TestHandleErrorPlainError(t *testing.T) {
	status, body := record(t, func(c *gin.Context) { HandleError(c, errors.New("boom"), nil) })
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error: boom", body["error"])
}

func TestAnswerErrors(t *testing.T) {
	status, body := record(t, func(c *gin.Context) {
		AnswerError(c, http.StatusBadRequest, "Please enter a question.", "No question provided")
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please enter a question.", body["answer"])
	assert.Equal(t, "No question provided", body["error"])
	assert.Equal(t, []interface{}{}, body["sources"])

	err := apperrors.Wrap(errors.New("timeout"), apperrors.ErrRetrievalFailed, "search")
	status, body = record(t, func(c *gin.Context) { HandleAnswerError(c, err) })
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ProcessingFailedAnswer, body["answer"])
	assert.Equal(t, "Document retrieval failed: search", body["error"])
}
