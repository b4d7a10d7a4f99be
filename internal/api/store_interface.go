package api

import (
	"context"

	"github.com/soaringjerry/stylus/internal/models"
	"github.com/soaringjerry/stylus/internal/services"
)

// Store is the record store behind the survey routes. Implementations own
// their records exclusively and hand out copies.
type Store interface {
	GetSurveyResponse(ctx context.Context, sessionID string) (*models.SurveyResponse, error)
	CreateSurveyResponse(ctx context.Context, in models.NewSurveyResponse) (*models.SurveyResponse, error)
	UpdateSurveyResponse(ctx context.Context, sessionID string, patch models.SurveyResponsePatch) (*models.SurveyResponse, error)
	DeleteSurveyResponse(ctx context.Context, sessionID string) (bool, error)
	Close() error
}

var (
	_ Store                = (*memoryStore)(nil)
	_ services.SurveyStore = (Store)(nil)
)
