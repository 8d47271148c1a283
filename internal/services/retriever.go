package services

import (
	"context"
	"log"
	"strings"

	"alfredoptarigan/ai-interviewer/internal/models"
)

const (
	DefaultRetrievalK = 2
	// Only the tail of the conversation matters for query rewriting.
	rewriteHistoryWindow = 6
)

type Retriever interface {
	// Retrieve never fails: any upstream error yields an empty slice.
	Retrieve(ctx context.Context, index *ContextIndex, history []models.Message, currentInput string, k int) []string
}

type retriever struct {
	llm      LanguageModel
	embedder Embedder
	store    VectorStore
	prompts  *PromptBuilder
	retry    RetryPolicy
}

func NewRetriever(llm LanguageModel, embedder Embedder, store VectorStore, retry RetryPolicy) Retriever {
	return &retriever{
		llm:      llm,
		embedder: embedder,
		store:    store,
		prompts:  NewPromptBuilder(),
		retry:    retry,
	}
}

func (r *retriever) Retrieve(ctx context.Context, index *ContextIndex, history []models.Message, currentInput string, k int) []string {
	if index == nil || index.ChunkCount == 0 {
		return []string{}
	}
	if k <= 0 {
		k = DefaultRetrievalK
	}

	query, err := r.rewriteQuery(ctx, history, currentInput)
	if err != nil {
		log.Printf("⚠️  Session %s: query rewrite failed, continuing without context: %v", index.SessionID, err)
		return []string{}
	}

	embedding, err := retryWithBackoff(ctx, r.retry, "query embedding", func(ctx context.Context) ([]float32, error) {
		return r.embedder.Embed(ctx, query)
	})
	if err != nil {
		log.Printf("⚠️  Session %s: query embedding failed, continuing without context: %v", index.SessionID, err)
		return []string{}
	}

	results, err := retryWithBackoff(ctx, r.retry, "vector search", func(ctx context.Context) ([]SearchResult, error) {
		return r.store.Search(ctx, index.SessionID, embedding, k)
	})
	if err != nil {
		log.Printf("⚠️  Session %s: vector search failed, continuing without context: %v", index.SessionID, err)
		return []string{}
	}

	texts := make([]string, 0, len(results))
	for _, res := range results {
		if t := strings.TrimSpace(res.Text); t != "" {
			texts = append(texts, t)
		}
		if len(texts) == k {
			break
		}
	}
	return texts
}

// rewriteQuery turns the current input into a standalone search query.
// Without history there is nothing to resolve, so no model call is made.
func (r *retriever) rewriteQuery(ctx context.Context, history []models.Message, currentInput string) (string, error) {
	input := strings.TrimSpace(currentInput)
	if len(history) == 0 {
		return input, nil
	}

	if len(history) > rewriteHistoryWindow {
		history = history[len(history)-rewriteHistoryWindow:]
	}

	rewritten, err := r.llm.Generate(ctx, r.prompts.QueryRewritePrompt().Fill(nil, history, input))
	if err != nil {
		return "", err
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return input, nil
	}
	return rewritten, nil
}
