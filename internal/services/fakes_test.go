package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type promptKind string

const (
	kindIntro      promptKind = "intro"
	kindQuestion   promptKind = "question"
	kindFeedback   promptKind = "feedback"
	kindAssessment promptKind = "assessment"
	kindRewrite    promptKind = "rewrite"
)

func classifyPrompt(p Prompt) promptKind {
	switch {
	case p.JSON:
		return kindAssessment
	case strings.Contains(p.System, "Start the interview"):
		return kindIntro
	case strings.Contains(p.System, "rewrite the latest input"):
		return kindRewrite
	case strings.Contains(p.System, "interview coach"):
		return kindFeedback
	default:
		return kindQuestion
	}
}

const validAssessmentJSON = `{
  "overall_score": 78,
  "summary": "Solid answers with concrete examples.",
  "questions_analysis": [
    {"question": "echoed", "response": "echoed", "feedback": "Clear.", "strengths": ["specific"], "improvements": ["quantify"], "score": 8, "response_depth": "advanced"}
  ],
  "skill_assessment": {"communication": 8, "technical_knowledge": 7, "problem_solving": 7, "cultural_fit": 9},
  "coaching_scores": {"clarity_of_motivation": 4, "specificity_of_learning": 3, "career_goal_alignment": 4},
  "recommendations": ["Use STAR"],
  "closure_message": "Thanks for your time."
}`

// fakeModel answers each prompt kind with a canned reply. Set the func
// fields to override.
type fakeModel struct {
	GenerateFunc func(ctx context.Context, prompt Prompt) (string, error)
	EmbedFunc    func(ctx context.Context, text string) ([]float32, error)

	mu        sync.Mutex
	prompts   []Prompt
	embeds    int
	questions int
}

func (m *fakeModel) Generate(ctx context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return m.defaultReply(prompt), nil
}

func (m *fakeModel) defaultReply(prompt Prompt) string {
	switch classifyPrompt(prompt) {
	case kindAssessment:
		return validAssessmentJSON
	case kindIntro:
		return "Hi, I'm Sam from the hiring team. Could you introduce yourself?"
	case kindRewrite:
		return "candidate experience " + prompt.Input
	case kindFeedback:
		return "Good start. Try structuring it with STAR."
	default:
		m.mu.Lock()
		m.questions++
		n := m.questions
		m.mu.Unlock()
		return fmt.Sprintf("Question %d: tell me about a hard problem you solved?", n)
	}
}

func (m *fakeModel) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embeds++
	m.mu.Unlock()

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return letterVector(text), nil
}

func (m *fakeModel) calls(kind promptKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.prompts {
		if classifyPrompt(p) == kind {
			n++
		}
	}
	return n
}

func (m *fakeModel) lastPrompt(kind promptKind) (Prompt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.prompts) - 1; i >= 0; i-- {
		if classifyPrompt(m.prompts[i]) == kind {
			return m.prompts[i], true
		}
	}
	return Prompt{}, false
}

// letterVector is a tiny deterministic embedding: letter frequencies folded
// into eight dimensions.
func letterVector(text string) []float32 {
	v := make([]float32, 8)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[(r-'a')%8]++
		}
	}
	return v
}

// fakeStore is a VectorStore with overridable behaviour on top of the
// in-memory store.
type fakeStore struct {
	VectorStore
	UpsertFunc func(ctx context.Context, sessionID string, chunks []string, embeddings [][]float32) error
	SearchFunc func(ctx context.Context, sessionID string, vec []float32, limit int) ([]SearchResult, error)

	mu       sync.Mutex
	searches int
	deleted  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{VectorStore: NewMemoryVectorStore()}
}

func (s *fakeStore) UpsertChunks(ctx context.Context, sessionID string, chunks []string, embeddings [][]float32) error {
	if s.UpsertFunc != nil {
		return s.UpsertFunc(ctx, sessionID, chunks, embeddings)
	}
	return s.VectorStore.UpsertChunks(ctx, sessionID, chunks, embeddings)
}

func (s *fakeStore) Search(ctx context.Context, sessionID string, vec []float32, limit int) ([]SearchResult, error) {
	s.mu.Lock()
	s.searches++
	s.mu.Unlock()
	if s.SearchFunc != nil {
		return s.SearchFunc(ctx, sessionID, vec, limit)
	}
	return s.VectorStore.Search(ctx, sessionID, vec, limit)
}

func (s *fakeStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, sessionID)
	s.mu.Unlock()
	return s.VectorStore.DeleteSession(ctx, sessionID)
}

func (s *fakeStore) stored(sessionID string) int {
	results, _ := s.VectorStore.Search(context.Background(), sessionID, make([]float32, 8), 0)
	return len(results)
}
