package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/soaringjerry/stylus/internal/models"
	"github.com/soaringjerry/stylus/internal/services"
)

const surveyColumns = `id, session_id, tone, sentence_length, vocabulary, formality, examples,
	audiences, content_types, personality, use_bullet_points, use_headers, use_cta,
	industry, custom_instructions, audience_context, completed_at`

// SQLiteStore persists survey responses in one SQLite table. The UNIQUE
// constraint on session_id makes create a test-and-set.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the parent directory and opens path with a busy timeout and
// immediate write transactions.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000&_txlock=immediate", filepath.ToSlash(path))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func encodeStrings(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeStrings(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func scanSurveyResponse(row rowScanner) (*models.SurveyResponse, error) {
	var (
		r                                       models.SurveyResponse
		audiences, contentTypes, personality    string
		bullets, headers, cta                   int64
		industry, instructions, audienceContext sql.NullString
	)
	err := row.Scan(&r.ID, &r.SessionID, &r.Tone, &r.SentenceLength, &r.Vocabulary, &r.Formality, &r.Examples,
		&audiences, &contentTypes, &personality, &bullets, &headers, &cta,
		&industry, &instructions, &audienceContext, &r.CompletedAt)
	if err != nil {
		return nil, err
	}
	if r.Audiences, err = decodeStrings(audiences); err != nil {
		return nil, fmt.Errorf("decode audiences: %w", err)
	}
	if r.ContentTypes, err = decodeStrings(contentTypes); err != nil {
		return nil, fmt.Errorf("decode content_types: %w", err)
	}
	if r.Personality, err = decodeStrings(personality); err != nil {
		return nil, fmt.Errorf("decode personality: %w", err)
	}
	r.UseBulletPoints = bullets != 0
	r.UseHeaders = headers != 0
	r.UseCTA = cta != 0
	r.Industry = fromNullString(industry)
	r.CustomInstructions = fromNullString(instructions)
	r.AudienceContext = fromNullString(audienceContext)
	return &r, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *SQLiteStore) GetSurveyResponse(ctx context.Context, sessionID string) (*models.SurveyResponse, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+surveyColumns+" FROM survey_responses WHERE session_id = ?", sessionID)
	r, err := scanSurveyResponse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get survey response: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) CreateSurveyResponse(ctx context.Context, in models.NewSurveyResponse) (*models.SurveyResponse, error) {
	rec := in.Record(0, s.now())
	args, err := columnArgs(rec)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO survey_responses (session_id, tone, sentence_length, vocabulary, formality, examples,
	audiences, content_types, personality, use_bullet_points, use_headers, use_cta,
	industry, custom_instructions, audience_context, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, append([]any{rec.SessionID}, args...)...)
	if isUniqueViolation(err) {
		return nil, services.ErrSessionExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert survey response: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("insert survey response: %w", err)
	}
	return rec, nil
}

// UpdateSurveyResponse reads, merges and writes inside one transaction.
func (s *SQLiteStore) UpdateSurveyResponse(ctx context.Context, sessionID string, patch models.SurveyResponsePatch) (*models.SurveyResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, "SELECT "+surveyColumns+" FROM survey_responses WHERE session_id = ?", sessionID)
	rec, err := scanSurveyResponse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load survey response: %w", err)
	}

	patch.Apply(rec)
	rec.CompletedAt = models.Timestamp(s.now())
	args, err := columnArgs(rec)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `UPDATE survey_responses SET tone = ?, sentence_length = ?, vocabulary = ?, formality = ?, examples = ?,
	audiences = ?, content_types = ?, personality = ?, use_bullet_points = ?, use_headers = ?, use_cta = ?,
	industry = ?, custom_instructions = ?, audience_context = ?, completed_at = ?
	WHERE id = ?`, append(args, rec.ID)...)
	if err != nil {
		return nil, fmt.Errorf("update survey response: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) DeleteSurveyResponse(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM survey_responses WHERE session_id = ?", sessionID)
	if err != nil {
		return false, fmt.Errorf("delete survey response: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete survey response: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// columnArgs returns the mutable columns of r in table order, from tone to completed_at.
func columnArgs(r *models.SurveyResponse) ([]any, error) {
	audiences, err := encodeStrings(r.Audiences)
	if err != nil {
		return nil, fmt.Errorf("encode audiences: %w", err)
	}
	contentTypes, err := encodeStrings(r.ContentTypes)
	if err != nil {
		return nil, fmt.Errorf("encode content_types: %w", err)
	}
	personality, err := encodeStrings(r.Personality)
	if err != nil {
		return nil, fmt.Errorf("encode personality: %w", err)
	}
	return []any{
		r.Tone, r.SentenceLength, r.Vocabulary, r.Formality, r.Examples,
		audiences, contentTypes, personality,
		boolToInt64(r.UseBulletPoints), boolToInt64(r.UseHeaders), boolToInt64(r.UseCTA),
		toNullString(r.Industry), toNullString(r.CustomInstructions), toNullString(r.AudienceContext),
		r.CompletedAt,
	}, nil
}
