package injector

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/scholar-ai/internal/conf"
	"github.com/lk2023060901/scholar-ai/internal/data"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

func testConfig(t *testing.T) *conf.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := conf.LoadConfig("")
	require.NoError(t, err)
	cfg.Chunking.TokenEncoding = ""
	return cfg
}

func TestNewApp(t *testing.T) {
	tests := []struct {
		name    string
		metrics bool
		status  int
	}{
		{name: "metrics enabled", metrics: true, status: http.StatusOK},
		{name: "metrics disabled", metrics: false, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Server.EnableMetrics = tt.metrics

			app, err := newApp(cfg, logger.NewNop(), &data.Data{})
			require.NoError(t, err)
			defer app.pool.Shutdown()

			assert.NotNil(t, app.Process)
			assert.NotNil(t, app.Query)
			assert.NotNil(t, app.Country)
			assert.Equal(t, tt.metrics, app.Registry != nil)

			handler := app.NewHTTPServer().Handler()

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)

			w = httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestNewAppInvalidCountryWindow(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chunking.CountryOverlap = cfg.Chunking.CountryWindow

	_, err := newApp(cfg, logger.NewNop(), &data.Data{})
	assert.Error(t, err)
}

func TestLoggerConfig(t *testing.T) {
	cfg := LoggerConfig(conf.LogConfig{
		Level:  "debug",
		Format: "console",
		File:   conf.FileLogConfig{Filename: "logs/app.log", MaxSize: 10},
	})

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "console", cfg.Output)
	assert.Equal(t, "logs/app.log", cfg.File.Filename)
	assert.Equal(t, 10, cfg.File.MaxSize)
	assert.NoError(t, cfg.Validate())

	defaults := LoggerConfig(conf.LogConfig{})
	assert.Equal(t, "info", defaults.Level)
}
