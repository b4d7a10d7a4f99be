package api

import (
	"context"
	"sync"
	"time"

	"github.com/soaringjerry/stylus/internal/models"
	"github.com/soaringjerry/stylus/internal/services"
)

// memoryStore keeps survey responses for the lifetime of the process.
type memoryStore struct {
	mu        sync.RWMutex
	responses map[string]*models.SurveyResponse
	nextID    int64
	now       func() time.Time
}

// NewMemoryStore returns an empty in-process store. Ids start at 1.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		responses: map[string]*models.SurveyResponse{},
		nextID:    1,
		now:       time.Now,
	}
}

func (s *memoryStore) GetSurveyResponse(_ context.Context, sessionID string) (*models.SurveyResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responses[sessionID].Clone(), nil
}

// CreateSurveyResponse checks and inserts under one lock, so two racing
// creates for a session yield one record and one ErrSessionExists.
func (s *memoryStore) CreateSurveyResponse(_ context.Context, in models.NewSurveyResponse) (*models.SurveyResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.responses[in.SessionID]; exists {
		return nil, services.ErrSessionExists
	}
	rec := in.Record(s.nextID, s.now())
	s.nextID++
	s.responses[rec.SessionID] = rec
	return rec.Clone(), nil
}

func (s *memoryStore) UpdateSurveyResponse(_ context.Context, sessionID string, patch models.SurveyResponsePatch) (*models.SurveyResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.responses[sessionID]
	if !ok {
		return nil, nil
	}
	updated := existing.Clone()
	patch.Apply(updated)
	updated.CompletedAt = models.Timestamp(s.now())
	s.responses[sessionID] = updated
	return updated.Clone(), nil
}

func (s *memoryStore) DeleteSurveyResponse(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.responses[sessionID]; !ok {
		return false, nil
	}
	delete(s.responses, sessionID)
	return true, nil
}

func (s *memoryStore) Close() error { return nil }
