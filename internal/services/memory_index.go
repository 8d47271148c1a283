package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	id     string
	index  int
	text   string
	vector []float32
}

// memoryVectorStore is the in-process VectorStore used when no Qdrant URL is
// configured. Search is a brute-force cosine scan over one session's chunks.
type memoryVectorStore struct {
	mu       sync.RWMutex
	sessions map[string][]memoryEntry
}

func NewMemoryVectorStore() VectorStore {
	return &memoryVectorStore{sessions: make(map[string][]memoryEntry)}
}

func (m *memoryVectorStore) UpsertChunks(_ context.Context, sessionID string, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d != %d", len(chunks), len(embeddings))
	}

	entries := make([]memoryEntry, len(chunks))
	for i := range chunks {
		entries[i] = memoryEntry{
			id:     uuid.NewString(),
			index:  i,
			text:   chunks[i],
			vector: append([]float32(nil), embeddings[i]...),
		}
	}

	m.mu.Lock()
	m.sessions[sessionID] = append(m.sessions[sessionID], entries...)
	m.mu.Unlock()
	return nil
}

func (m *memoryVectorStore) Search(_ context.Context, sessionID string, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	m.mu.RLock()
	entries := m.sessions[sessionID]
	results := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, SearchResult{
			ID:         e.id,
			Score:      cosine(queryEmbedding, e.vector),
			Text:       e.text,
			ChunkIndex: e.index,
		})
	}
	m.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *memoryVectorStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

func cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
