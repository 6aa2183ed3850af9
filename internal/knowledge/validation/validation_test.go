package validation

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lk2023060901/scholar-ai/internal/conf"
)

type fakeStore struct {
	healthErr error
	exists    bool
}

func (f *fakeStore) Collection() string { return "scholar-ai" }

func (f *fakeStore) HealthCheck(context.Context) error { return f.healthErr }

func (f *fakeStore) CollectionExists(context.Context) (bool, error) { return f.exists, nil }

func validConfig(t *testing.T) *conf.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := conf.LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		store      *fakeStore
		apiKey     string
		overall    bool
		collection bool
		missing    []string
	}{
		{"ready", &fakeStore{exists: true}, "sk", true, true, []string{}},
		{"collection missing", &fakeStore{}, "sk", true, false, []string{}},
		{"qdrant down", &fakeStore{healthErr: errors.New("refused")}, "sk", false, false, []string{"Start the Qdrant server"}},
		{"no api key", &fakeStore{exists: true}, "", false, true, []string{"OPENAI_API_KEY"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.OpenAI.APIKey = tt.apiKey

			r := Validate(context.Background(), cfg, tt.store)
			assert.Equal(t, tt.overall, r.OverallStatus)
			assert.Equal(t, tt.collection, r.QdrantCollection)
			assert.Equal(t, tt.missing, r.Missing)
			assert.Equal(t, "scholar-ai", r.Collection)
		})
	}
}

func TestReportPrint(t *testing.T) {
	r := &Report{Collection: "scholar-ai", Missing: []string{"OPENAI_API_KEY"}}
	var buf bytes.Buffer
	r.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "[x] collection 'scholar-ai'")
	assert.Contains(t, out, "system is not ready")
	assert.Contains(t, out, "- OPENAI_API_KEY")
}
