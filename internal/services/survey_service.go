package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/soaringjerry/stylus/internal/models"
)

// SurveyStore abstracts persistence operations required by SurveyService.
// Lookups of a missing session return (nil, nil); only real failures are errors.
type SurveyStore interface {
	GetSurveyResponse(ctx context.Context, sessionID string) (*models.SurveyResponse, error)
	// CreateSurveyResponse must return ErrSessionExists rather than overwrite a live record.
	CreateSurveyResponse(ctx context.Context, in models.NewSurveyResponse) (*models.SurveyResponse, error)
	UpdateSurveyResponse(ctx context.Context, sessionID string, patch models.SurveyResponsePatch) (*models.SurveyResponse, error)
	DeleteSurveyResponse(ctx context.Context, sessionID string) (bool, error)
}

// SurveyService maps store outcomes onto the service error taxonomy.
type SurveyService struct {
	store SurveyStore
}

// NewSurveyService constructs a service bound to the provided persistence interface.
func NewSurveyService(store SurveyStore) *SurveyService {
	return &SurveyService{store: store}
}

func (s *SurveyService) Get(ctx context.Context, sessionID string) (*models.SurveyResponse, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	resp, err := s.store.GetSurveyResponse(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get survey response: %w", err)
	}
	if resp == nil {
		return nil, NewNotFoundError("survey.not_found")
	}
	return resp, nil
}

// Create stores a new response. A second create for the same session is a
// conflict and leaves the existing record untouched.
func (s *SurveyService) Create(ctx context.Context, in models.NewSurveyResponse) (*models.SurveyResponse, error) {
	if err := checkSessionID(in.SessionID); err != nil {
		return nil, err
	}
	resp, err := s.store.CreateSurveyResponse(ctx, in)
	if errors.Is(err, ErrSessionExists) {
		return nil, NewConflictError("survey.exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create survey response: %w", err)
	}
	return resp, nil
}

func (s *SurveyService) Update(ctx context.Context, sessionID string, patch models.SurveyResponsePatch) (*models.SurveyResponse, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	resp, err := s.store.UpdateSurveyResponse(ctx, sessionID, patch)
	if err != nil {
		return nil, fmt.Errorf("update survey response: %w", err)
	}
	if resp == nil {
		return nil, NewNotFoundError("survey.not_found")
	}
	return resp, nil
}

func (s *SurveyService) Delete(ctx context.Context, sessionID string) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	ok, err := s.store.DeleteSurveyResponse(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("delete survey response: %w", err)
	}
	if !ok {
		return NewNotFoundError("survey.not_found")
	}
	return nil
}

// Export renders the stored response as a downloadable JSON document.
func (s *SurveyService) Export(ctx context.Context, sessionID string) (*ExportFile, error) {
	resp, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ExportJSON(resp)
}

func checkSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return NewInvalidError("survey.invalid_session")
	}
	return nil
}
