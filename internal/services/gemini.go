package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"alfredoptarigan/ai-interviewer/internal/models"
)

const (
	maxEmbedInputChars     = 40000
	defaultTranscribeModel = "gemini-2.5-flash"
)

type GeminiService interface {
	ModelProvider
	Transcriber
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	dimensions int32
	timeout    time.Duration
}

func NewGeminiService(apiKey, modelName, embedModel string, dimensions int, timeout time.Duration) (GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: embedModel,
		dimensions: int32(dimensions),
		timeout:    timeout,
	}, nil
}

// Embed implements Embedder.
func (g *geminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, maxEmbedInputChars)

	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	var cfg *genai.EmbedContentConfig
	if g.dimensions > 0 {
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &g.dimensions}
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Generate implements LanguageModel.
func (g *geminiService) Generate(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, geminiContents(prompt), geminiConfig(prompt))
	if err != nil {
		log.Printf("❌ Gemini API error: %v", err)
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// Transcribe implements Transcriber with inline audio.
func (g *geminiService) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", newValidationError("audio", "is empty")
	}

	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromText("Transcribe this audio to text. Provide only the transcript, no additional commentary."),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		return "", upstream("transcribe audio", err)
	}

	transcript := strings.TrimSpace(resp.Text())
	log.Printf("🎙️  Audio transcribed: %d bytes -> %d characters", len(audio), len(transcript))
	return transcript, nil
}

// geminiConfig puts the system text in the system instruction slot, never
// in the turn list.
func geminiConfig(prompt Prompt) *genai.GenerateContentConfig {
	temperature := prompt.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}
	if prompt.System != "" {
		config.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	if prompt.JSON {
		config.ResponseMIMEType = "application/json"
	}
	return config
}

func geminiContents(prompt Prompt) []*genai.Content {
	contents := make([]*genai.Content, 0, len(prompt.History)+1)
	for _, m := range prompt.History {
		var role genai.Role = genai.RoleUser
		if m.Role == models.RoleAI {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	input := prompt.Input
	if strings.TrimSpace(input) == "" {
		input = "Continue."
	}
	return append(contents, genai.NewContentFromText(input, genai.RoleUser))
}

func truncateRunes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
