package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/ai-interviewer/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrVersionConflict means another writer committed the session after it was read.
	ErrVersionConflict = errors.New("session was modified concurrently")
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	// Update writes the whole session if its stored version still equals
	// session.Version, then bumps session.Version.
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter SessionFilter) ([]models.Session, error)
	FindStaleSubmitting(ctx context.Context, olderThan time.Time, limit int) ([]models.Session, error)
}

type SessionFilter struct {
	Status models.SessionStatus
	Limit  int
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository returns the gorm-backed store, or the in-process
// store when db is nil.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	if db == nil {
		return NewMemorySessionRepository()
	}
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.Version = 1

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	expected := session.Version
	updated := *session
	updated.Version = expected + 1
	updated.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND version = ?", session.ID, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(&updated)

	if result.Error != nil {
		return fmt.Errorf("failed to update session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Session{}).Where("id = ?", session.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check session: %w", err)
		}
		if count == 0 {
			return ErrSessionNotFound
		}
		return ErrVersionConflict
	}

	session.Version = updated.Version
	session.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) List(ctx context.Context, filter SessionFilter) ([]models.Session, error) {
	query := r.db.WithContext(ctx).Order("updated_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var sessions []models.Session
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (r *sessionRepository) FindStaleSubmitting(ctx context.Context, olderThan time.Time, limit int) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.StatusSubmitting, olderThan).
		Order("updated_at ASC").
		Limit(limit).
		Find(&sessions).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find stale submitting sessions: %w", err)
	}
	return sessions, nil
}
