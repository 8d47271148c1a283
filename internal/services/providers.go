package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"alfredoptarigan/ai-interviewer/internal/config"
)

// Providers bundles the external clients selected by configuration.
type Providers struct {
	Models      ModelProvider
	Store       VectorStore
	Transcriber Transcriber
	Synthesizer Synthesizer

	closers []func() error
}

func (p *Providers) Close() {
	for _, closeFn := range p.closers {
		if err := closeFn(); err != nil {
			log.Printf("⚠️  Failed to close provider: %v", err)
		}
	}
}

// NewProviders builds the model, vector store and speech clients. Speech
// clients are nil when not configured.
func NewProviders(ctx context.Context, cfg *config.Config) (*Providers, error) {
	if err := checkIndexDurability(cfg); err != nil {
		return nil, err
	}
	p := &Providers{}

	switch cfg.LLM.Provider {
	case "openai":
		models, err := NewOpenAIService(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIBaseURL, cfg.LLM.ChatModel, cfg.LLM.EmbedModel, cfg.LLM.EmbedDimensions, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		p.Models = models
		log.Printf("🤖 Using OpenAI-compatible model %s", cfg.LLM.ChatModel)
	case "gemini", "":
		gemini, err := NewGeminiService(cfg.LLM.GeminiAPIKey, cfg.LLM.ChatModel, cfg.LLM.EmbedModel, cfg.LLM.EmbedDimensions, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		p.Models = gemini
		p.Transcriber = gemini
		log.Printf("🤖 Using Gemini model %s", cfg.LLM.ChatModel)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLM.Provider)
	}

	// Gemini handles transcription even when chat runs on another provider.
	if p.Transcriber == nil && cfg.LLM.GeminiAPIKey != "" {
		gemini, err := NewGeminiService(cfg.LLM.GeminiAPIKey, defaultTranscribeModel, cfg.LLM.EmbedModel, cfg.LLM.EmbedDimensions, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		p.Transcriber = gemini
	}

	if cfg.Speech.ElevenLabsAPIKey != "" {
		p.Synthesizer = NewElevenLabsService(cfg.Speech.ElevenLabsAPIKey, cfg.Speech.ElevenLabsVoiceID, cfg.Speech.ElevenLabsModelID, cfg.LLM.Timeout)
	}

	if cfg.Qdrant.URL == "" {
		log.Println("⚠️  QDRANT_URL not set, using in-memory vector store")
		p.Store = NewMemoryVectorStore()
		return p, nil
	}

	qdrantStore, err := NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, cfg.LLM.EmbedDimensions)
	if err != nil {
		return nil, err
	}
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := qdrantStore.InitCollection(initCtx); err != nil {
		qdrantStore.Close()
		return nil, fmt.Errorf("failed to initialize qdrant collection: %w", err)
	}
	p.Store = qdrantStore
	p.closers = append(p.closers, qdrantStore.Close)

	return p, nil
}

// checkIndexDurability refuses an in-process vector index next to a durable
// session store: after a restart every stored session would retrieve nothing.
func checkIndexDurability(cfg *config.Config) error {
	if cfg.Qdrant.URL != "" || cfg.Database.Driver == "memory" {
		return nil
	}
	return fmt.Errorf("QDRANT_URL is required when DB_DRIVER=%s: the in-memory vector index does not survive restarts (use DB_DRIVER=memory for a throwaway setup)", cfg.Database.Driver)
}

// RetryPolicyFrom maps worker settings onto the embedding/search retry policy.
func RetryPolicyFrom(cfg *config.Config) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  cfg.Worker.RetryMaxAttempts,
		InitialDelay: cfg.Worker.RetryInitialDelay,
	}
}
