package services

import (
	"context"

	"alfredoptarigan/ai-interviewer/internal/models"
)

// Prompt is a fully composed model request: a system instruction, the
// ordered conversation so far and the final user turn.
type Prompt struct {
	System      string
	History     []models.Message
	Input       string
	Temperature float32
	// JSON asks the provider to return a single JSON object.
	JSON bool
}

type LanguageModel interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ModelProvider is implemented by backends that serve both capabilities.
type ModelProvider interface {
	LanguageModel
	Embedder
}
