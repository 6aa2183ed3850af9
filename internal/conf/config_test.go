package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_API_KEY", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, "scholar-ai", cfg.Qdrant.Collection)
	assert.Equal(t, 100, cfg.Qdrant.UpsertBatchSize)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "data/schools", cfg.Data.SchoolsDirectory)
	assert.Equal(t, 1200, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 1000, cfg.Chunking.PartSize)
	assert.Equal(t, "supplement", cfg.Chunking.SplitMode)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.InDelta(t, 0.5, cfg.Search.ScoreThreshold, 1e-9)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, 800, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 24*time.Hour, cfg.Redis.CacheTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("QDRANT_HOST", "qdrant.internal")
	t.Setenv("QDRANT_PORT", "7334")
	t.Setenv("COLLECTION_NAME", "schools")
	t.Setenv("FLASK_PORT", "8081")
	t.Setenv("FLASK_DEBUG", "true")
	t.Setenv("SCORE_THRESHOLD", "0.42")
	t.Setenv("SEARCH_LIMIT", "3")
	t.Setenv("MAX_CHUNK_SIZE", "900")
	t.Setenv("CHUNK_SPLIT_MODE", "replace")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
	assert.Equal(t, 7334, cfg.Qdrant.Port)
	assert.Equal(t, "schools", cfg.Qdrant.Collection)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.InDelta(t, 0.42, cfg.Search.ScoreThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Search.Limit)
	assert.Equal(t, 900, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, "replace", cfg.Chunking.SplitMode)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-file")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9090\nllm:\n  model: gpt-4o-mini\n  answer_language: English\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "English", cfg.LLM.AnswerLanguage)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.OpenAI.APIKey = "" }, wantErr: "APIKey"},
		{name: "bad split mode", mutate: func(c *Config) { c.Chunking.SplitMode = "merge" }, wantErr: "SplitMode"},
		{name: "threshold above one", mutate: func(c *Config) { c.Search.ScoreThreshold = 1.5 }, wantErr: "ScoreThreshold"},
		{name: "overlap not below window", mutate: func(c *Config) { c.Chunking.CountryOverlap = 800 }, wantErr: "CountryOverlap"},
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "Port"},
		{
			name:    "self hosted model without base url",
			mutate:  func(c *Config) { c.Embedding.Model = "all-MiniLM-L6-v2" },
			wantErr: "EMBEDDING_BASE_URL",
		},
		{
			name: "self hosted model with base url",
			mutate: func(c *Config) {
				c.Embedding.Model = "all-MiniLM-L6-v2"
				c.Embedding.BaseURL = "http://localhost:8080/v1"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig("")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMissingRequirements(t *testing.T) {
	cfg := &Config{
		Qdrant:    QdrantConfig{Host: "localhost", Collection: "scholar-ai"},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small"},
	}
	assert.Equal(t, []string{"OPENAI_API_KEY"}, cfg.MissingRequirements())

	cfg.OpenAI.APIKey = "sk"
	assert.Empty(t, cfg.MissingRequirements())

	cfg.Embedding.Model = "bge-small-en"
	assert.Equal(t, []string{"EMBEDDING_BASE_URL"}, cfg.MissingRequirements())
}

func TestAddrHelpers(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 5000}
	assert.Equal(t, "127.0.0.1:5000", s.Addr())
}
