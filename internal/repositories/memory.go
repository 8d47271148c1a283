package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"alfredoptarigan/ai-interviewer/internal/models"
)

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]*models.Session)}
}

func (m *memorySessionRepository) Create(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return ErrVersionConflict
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.Version = 1
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

func (m *memorySessionRepository) FindByID(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(stored), nil
}

func (m *memorySessionRepository) Update(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions[session.ID]
	if !ok {
		return ErrSessionNotFound
	}
	if stored.Version != session.Version {
		return ErrVersionConflict
	}

	session.Version++
	session.UpdatedAt = time.Now().UTC()
	session.CreatedAt = stored.CreatedAt
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

func (m *memorySessionRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memorySessionRepository) List(_ context.Context, filter SessionFilter) ([]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memorySessionRepository) FindStaleSubmitting(_ context.Context, olderThan time.Time, limit int) ([]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Session
	for _, s := range m.sessions {
		if s.Status == models.StatusSubmitting && s.UpdatedAt.Before(olderThan) {
			out = append(out, *cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// cloneSession copies every slice and pointer so callers never alias stored state.
func cloneSession(s *models.Session) *models.Session {
	c := *s
	if s.Skills != nil {
		c.Skills = append([]string(nil), s.Skills...)
	}
	if s.ChatHistory != nil {
		c.ChatHistory = append([]models.Message(nil), s.ChatHistory...)
	}
	if s.LastFeedback != nil {
		fb := *s.LastFeedback
		c.LastFeedback = &fb
	}
	if s.OverallFeedback != nil {
		a := cloneAssessment(*s.OverallFeedback)
		c.OverallFeedback = &a
	}
	return &c
}

func cloneAssessment(a models.Assessment) models.Assessment {
	c := a
	c.Recommendations = append([]string(nil), a.Recommendations...)
	c.QuestionsAnalysis = make([]models.QuestionAnalysis, len(a.QuestionsAnalysis))
	for i, qa := range a.QuestionsAnalysis {
		qa.Strengths = append([]string(nil), qa.Strengths...)
		qa.Improvements = append([]string(nil), qa.Improvements...)
		c.QuestionsAnalysis[i] = qa
	}
	return c
}
