package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ai-interviewer/internal/config"
)

func TestNewProviders_RequiresQdrantForDurableSessions(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg := &config.Config{
				Database: config.DatabaseConfig{Driver: driver},
				LLM:      config.LLMConfig{Provider: "gemini", GeminiAPIKey: "test-key"},
			}

			p, err := NewProviders(context.Background(), cfg)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), "QDRANT_URL")
		})
	}
}

func TestNewProviders_MemoryDriverUsesMemoryIndex(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "memory"},
		LLM: config.LLMConfig{
			Provider:     "gemini",
			GeminiAPIKey: "test-key",
			ChatModel:    "gemini-2.5-flash",
			EmbedModel:   "text-embedding-004",
		},
	}

	p, err := NewProviders(context.Background(), cfg)
	require.NoError(t, err)
	defer p.Close()

	assert.IsType(t, &memoryVectorStore{}, p.Store)
	assert.NotNil(t, p.Models)
	assert.NotNil(t, p.Transcriber)
	assert.Nil(t, p.Synthesizer)
}

func TestCheckIndexDurability(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		qdrant  string
		wantErr bool
	}{
		{"memory without qdrant", "memory", "", false},
		{"postgres with qdrant", "postgres", "http://localhost:6334", false},
		{"sqlite with qdrant", "sqlite", "http://localhost:6334", false},
		{"postgres without qdrant", "postgres", "", true},
		{"sqlite without qdrant", "sqlite", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkIndexDurability(&config.Config{
				Database: config.DatabaseConfig{Driver: tt.driver},
				Qdrant:   config.QdrantConfig{URL: tt.qdrant},
			})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
