package services

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// ContextIndex is a handle on one session's chunk embeddings. It is built
// once at session start and only read afterwards.
type ContextIndex struct {
	SessionID  string
	ChunkCount int
}

type ContextIndexer interface {
	Build(ctx context.Context, sessionID, contextText string) (*ContextIndex, error)
	Open(sessionID string, chunkCount int) *ContextIndex
	Discard(ctx context.Context, sessionID string) error
}

type contextIndexer struct {
	chunker   TextChuncker
	embedder  Embedder
	store     VectorStore
	chunkSize int
	overlap   int
	retry     RetryPolicy
}

func NewContextIndexer(embedder Embedder, store VectorStore, chunkSize, overlap int, retry RetryPolicy) ContextIndexer {
	return &contextIndexer{
		chunker:   NewTextChunker(),
		embedder:  embedder,
		store:     store,
		chunkSize: chunkSize,
		overlap:   overlap,
		retry:     retry,
	}
}

// Build implements ContextIndexer. Nothing is left in the vector store when
// it fails.
func (ci *contextIndexer) Build(ctx context.Context, sessionID, contextText string) (*ContextIndex, error) {
	if strings.TrimSpace(contextText) == "" {
		return nil, ErrEmptyContext
	}

	chunks := ci.chunker.ChunkText(contextText, ci.chunkSize, ci.overlap)
	if len(chunks) == 0 {
		return nil, ErrEmptyContext
	}

	log.Printf("✂️  Session %s: indexing %d chunks", sessionID, len(chunks))

	embeddings := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := retryWithBackoff(ctx, ci.retry, "embedding", func(ctx context.Context) ([]float32, error) {
			return ci.embedder.Embed(ctx, chunk)
		})
		if err != nil {
			return nil, upstream("embedding", fmt.Errorf("chunk %d: %w", i, err))
		}
		embeddings = append(embeddings, embedding)
	}

	_, err := retryWithBackoff(ctx, ci.retry, "vector upsert", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, ci.store.UpsertChunks(ctx, sessionID, chunks, embeddings)
	})
	if err != nil {
		// A partial upsert must not survive.
		if derr := ci.store.DeleteSession(context.WithoutCancel(ctx), sessionID); derr != nil {
			log.Printf("⚠️  Session %s: failed to clean up partial index: %v", sessionID, derr)
		}
		return nil, upstream("vector upsert", err)
	}

	return &ContextIndex{SessionID: sessionID, ChunkCount: len(chunks)}, nil
}

func (ci *contextIndexer) Open(sessionID string, chunkCount int) *ContextIndex {
	return &ContextIndex{SessionID: sessionID, ChunkCount: chunkCount}
}

func (ci *contextIndexer) Discard(ctx context.Context, sessionID string) error {
	if err := ci.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to discard context index: %w", err)
	}
	return nil
}
