package data

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/scholar-ai/internal/conf"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

func testConfig(t *testing.T) *conf.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := conf.LoadConfig("")
	require.NoError(t, err)
	return cfg
}

func TestNewData(t *testing.T) {
	cfg := testConfig(t)

	d, cleanup, err := NewData(cfg, logger.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, d.Redis)
	assert.Equal(t, cfg.Qdrant.Collection, d.Store.Collection())
	assert.Equal(t, cfg.Qdrant.CountryCollection, d.CountryStore.Collection())
}

func TestNewDataWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	d, cleanup, err := NewData(cfg, logger.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, d.Redis)
}

func TestNewDataInvalidQdrant(t *testing.T) {
	cfg := testConfig(t)
	cfg.Qdrant.Host = ""

	_, _, err := NewData(cfg, logger.NewNop())
	assert.Error(t, err)
}
