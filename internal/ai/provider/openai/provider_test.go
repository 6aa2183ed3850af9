package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/scholar-ai/internal/ai/provider/types"
)

type capturedRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float32         `json:"temperature"`
}

func newServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateChatCompletion(t *testing.T) {
	var captured capturedRequest
	srv := newServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"model": "gpt-3.5-turbo",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Tuition is $45,000.  "}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`, &captured)

	p, err := New(&types.Config{APIKey: "k", BaseURL: srv.URL, Model: "gpt-3.5-turbo", MaxTokens: 800, Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	resp, err := p.CreateChatCompletion(context.Background(), types.ChatCompletionRequest{
		Messages: []types.Message{types.SystemMessage("advisor"), types.UserMessage("question")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Tuition is $45,000.", resp.Text())
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.Equal(t, "gpt-3.5-turbo", captured.Model)
	assert.Equal(t, 800, captured.MaxTokens)
	assert.InDelta(t, 0.3, captured.Temperature, 1e-6)
	assert.Equal(t, []types.Message{
		{Role: types.RoleSystem, Content: "advisor"},
		{Role: types.RoleUser, Content: "question"},
	}, captured.Messages)
}

func TestCreateChatCompletionErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv := newServer(t, http.StatusTooManyRequests, `{"error": {"message": "rate limited", "type": "rate_limit_error"}}`, nil)
		p, err := New(&types.Config{APIKey: "k", BaseURL: srv.URL, Model: "m"})
		require.NoError(t, err)

		_, err = p.CreateChatCompletion(context.Background(), types.ChatCompletionRequest{
			Messages: []types.Message{types.UserMessage("q")},
		})
		var perr *types.ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
		assert.True(t, perr.IsRetryable())
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"id": "x", "choices": []}`, nil)
		p, err := New(&types.Config{APIKey: "k", BaseURL: srv.URL, Model: "m"})
		require.NoError(t, err)

		_, err = p.CreateChatCompletion(context.Background(), types.ChatCompletionRequest{
			Messages: []types.Message{types.UserMessage("q")},
		})
		assert.ErrorIs(t, err, types.ErrEmptyResponse)
	})
}

func TestNewValidation(t *testing.T) {
	_, err := New(&types.Config{Model: "m"})
	assert.ErrorIs(t, err, types.ErrMissingAPIKey)
	_, err = New(&types.Config{APIKey: "k"})
	assert.ErrorIs(t, err, types.ErrMissingModel)
}
