package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/stylus/internal/models"
	"github.com/soaringjerry/stylus/internal/services"
)

func newTestStore(t *testing.T) (*SQLiteStore, *time.Time) {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)

	n, err := RunMigrations(conn, "")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	store, err := NewSQLiteStore(conn)
	require.NoError(t, err)
	now := time.Date(2025, 9, 17, 8, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	t.Cleanup(func() { _ = store.Close() })
	return store, &now
}

func strPtr(s string) *string { return &s }

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	created, err := s.CreateSurveyResponse(ctx, models.NewSurveyResponse{
		SessionID:      "s1",
		Tone:           "friendly",
		SentenceLength: 2,
		Vocabulary:     3,
		Formality:      4,
		Examples:       5,
		Audiences:      []string{"devs", "managers"},
		Personality:    []string{"witty"},
		UseHeaders:     true,
		Industry:       strPtr("tech"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.ID)
	assert.Equal(t, "2025-09-17T08:30:00.000Z", created.CompletedAt)

	got, err := s.GetSurveyResponse(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, []string{}, got.ContentTypes)
	assert.True(t, got.UseHeaders)
	assert.False(t, got.UseCTA)
	assert.Nil(t, got.CustomInstructions)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s, _ := newTestStore(t)
	got, err := s.GetSurveyResponse(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.CreateSurveyResponse(ctx, models.NewSurveyResponse{SessionID: "s1", Tone: "friendly"})
	require.NoError(t, err)
	_, err = s.CreateSurveyResponse(ctx, models.NewSurveyResponse{SessionID: "s1", Tone: "formal"})
	assert.True(t, errors.Is(err, services.ErrSessionExists))

	got, err := s.GetSurveyResponse(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "friendly", got.Tone)
}

func TestSQLiteStore_UpdateMerges(t *testing.T) {
	ctx := context.Background()
	s, now := newTestStore(t)

	created, err := s.CreateSurveyResponse(ctx, models.NewSurveyResponse{
		SessionID: "s1", Tone: "friendly", Formality: 2, Industry: strPtr("tech"), Audiences: []string{"devs"},
	})
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	formal := "formal"
	contentTypes := []string{"blog"}
	updated, err := s.UpdateSurveyResponse(ctx, "s1", models.SurveyResponsePatch{
		Tone:            &formal,
		ContentTypes:    &contentTypes,
		Industry:        models.NullableString{Set: true},
		AudienceContext: models.NullableString{Set: true, Value: strPtr("internal")},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "formal", updated.Tone)
	assert.Equal(t, 2, updated.Formality)
	assert.Equal(t, []string{"devs"}, updated.Audiences)
	assert.Equal(t, []string{"blog"}, updated.ContentTypes)
	assert.Nil(t, updated.Industry)
	assert.Equal(t, "internal", *updated.AudienceContext)
	assert.Equal(t, "2025-09-17T08:31:00.000Z", updated.CompletedAt)

	got, err := s.GetSurveyResponse(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestSQLiteStore_UpdateMissing(t *testing.T) {
	s, _ := newTestStore(t)
	tone := "x"
	got, err := s.UpdateSurveyResponse(context.Background(), "nope", models.SurveyResponsePatch{Tone: &tone})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.CreateSurveyResponse(ctx, models.NewSurveyResponse{SessionID: "s1", Tone: "t"})
	require.NoError(t, err)

	ok, err := s.DeleteSurveyResponse(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DeleteSurveyResponse(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetSurveyResponse(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	next, err := s.CreateSurveyResponse(ctx, models.NewSurveyResponse{SessionID: "s1", Tone: "t"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, next.ID, "ids are never reused")
}

func TestMigrations_Idempotent(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	defer conn.Close()

	pending, err := PendingMigrations(conn, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_survey_responses.sql"}, pending)

	n, err := RunMigrations(conn, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = RunMigrations(conn, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	pending, err = PendingMigrations(conn, "")
	require.NoError(t, err)
	assert.Empty(t, pending)

	n, err = RollbackMigrations(conn, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMigrations_MissingDirFallsBackToEmbedded(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	defer conn.Close()

	n, err := RunMigrations(conn, filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stylus.db")
	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = RunMigrations(conn, "")
	require.NoError(t, err)
	store, err := NewSQLiteStore(conn)
	require.NoError(t, err)

	_, err = store.CreateSurveyResponse(context.Background(), models.NewSurveyResponse{SessionID: "s1", Tone: "t"})
	require.NoError(t, err)
	assert.FileExists(t, path)
}
