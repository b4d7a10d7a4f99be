package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/soaringjerry/stylus/internal/services"
)

const defaultMaxBodyBytes = 1 << 20

// AIProxy is the AI surface the router forwards to.
type AIProxy interface {
	GeneratePreview(ctx context.Context, req services.PreviewRequest) (json.RawMessage, error)
	AnalyzeWritingStyle(ctx context.Context, req services.StyleAnalysisRequest) (json.RawMessage, error)
}

type Router struct {
	surveys *services.SurveyService
	ai      AIProxy
	logger  *zap.Logger
	prefix  string
	maxBody int64
}

type Option func(*Router)

// WithPrefix mounts the routes under p (default "/api"). An empty prefix
// mounts them at the root.
func WithPrefix(p string) Option {
	return func(rt *Router) { rt.prefix = strings.TrimRight(p, "/") }
}

func WithLogger(l *zap.Logger) Option {
	return func(rt *Router) {
		if l != nil {
			rt.logger = l
		}
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(rt *Router) {
		if n > 0 {
			rt.maxBody = n
		}
	}
}

// NewRouter wires the survey and AI routes to an explicitly constructed store.
func NewRouter(store Store, ai AIProxy, opts ...Option) *Router {
	rt := &Router{
		surveys: services.NewSurveyService(store),
		ai:      ai,
		logger:  zap.NewNop(),
		prefix:  "/api",
		maxBody: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc(rt.prefix+"/survey", rt.handleSurveys)                 // POST
	mux.HandleFunc(rt.prefix+"/survey/", rt.handleSurveyScoped)           // GET|PUT|DELETE /survey/{sessionId}, GET /survey/{sessionId}/export
	mux.HandleFunc(rt.prefix+"/ai/preview", rt.handlePreview)             // POST
	mux.HandleFunc(rt.prefix+"/ai/analyze-style", rt.handleAnalyzeStyle) // POST
	if rt.prefix != "" {
		mux.HandleFunc(rt.prefix+"/", rt.notFound)
	}
}

// POST /api/survey
func (rt *Router) handleSurveys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rt.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	body, ok := rt.readBody(w, r)
	if !ok {
		return
	}
	in, err := services.ValidateSurveyCreate(body)
	if err != nil {
		rt.writeError(w, r, err, "error.internal")
		return
	}
	resp, err := rt.surveys.Create(r.Context(), in)
	if err != nil {
		rt.writeError(w, r, err, "error.internal")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// /api/survey/{sessionId} and /api/survey/{sessionId}/export
func (rt *Router) handleSurveyScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.EscapedPath(), rt.prefix+"/survey/")
	parts := strings.Split(rest, "/")
	if len(parts) > 2 || (len(parts) == 2 && parts[1] != "export") {
		rt.notFound(w, r)
		return
	}
	sessionID, err := url.PathUnescape(parts[0])
	if err != nil || strings.TrimSpace(sessionID) == "" {
		rt.writeError(w, r, services.NewInvalidError("survey.invalid_session"), "error.internal")
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodGet {
			rt.methodNotAllowed(w, r, http.MethodGet)
			return
		}
		rt.exportSurvey(w, r, sessionID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.getSurvey(w, r, sessionID)
	case http.MethodPut:
		rt.updateSurvey(w, r, sessionID)
	case http.MethodDelete:
		rt.deleteSurvey(w, r, sessionID)
	default:
		rt.methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (rt *Router) getSurvey(w http.ResponseWriter, r *http.Request, sessionID string) {
	resp, err := rt.surveys.Get(r.Context(), sessionID)
	if err != nil {
		rt.writeError(w, r, err, "error.internal")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) updateSurvey(w http.ResponseWriter, r *http.Request, sessionID string) {
	body, ok := rt.readBody(w, r)
	if !ok {
		return
	}
	patch, err := services.ValidateSurveyUpdate(body)
	if err != nil {
		rt.writeError(w, r, err, "error.internal")
		return
	}
	resp, err := rt.surveys.Update(r.Context(), sessionID, patch)
	if err != nil {
		rt.writeError(w, r, err, "error.internal")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) deleteSurvey(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := rt.surveys.Delete(r.Context(), sessionID); err != nil {
		rt.writeError(w, r, err, "error.internal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportSurvey(w http.ResponseWriter, r *http.Request, sessionID string) {
	f, err := rt.surveys.Export(r.Context(), sessionID)
	if err != nil {
		rt.writeError(w, r, err, "error.internal")
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", f.ContentDisposition())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Body)
}

// POST /api/ai/preview
func (rt *Router) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rt.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	body, ok := rt.readBody(w, r)
	if !ok {
		return
	}
	req, err := services.ValidatePreviewRequest(body)
	if err != nil {
		rt.writeError(w, r, err, "ai.preview_failed")
		return
	}
	out, err := rt.ai.GeneratePreview(r.Context(), req)
	if err != nil {
		rt.writeError(w, r, err, "ai.preview_failed")
		return
	}
	writeRawJSON(w, http.StatusOK, out)
}

// POST /api/ai/analyze-style
func (rt *Router) handleAnalyzeStyle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rt.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	body, ok := rt.readBody(w, r)
	if !ok {
		return
	}
	req, err := services.ValidateStyleAnalysisRequest(body)
	if err != nil {
		rt.writeError(w, r, err, "ai.analyze_failed")
		return
	}
	out, err := rt.ai.AnalyzeWritingStyle(r.Context(), req)
	if err != nil {
		rt.writeError(w, r, err, "ai.analyze_failed")
		return
	}
	writeRawJSON(w, http.StatusOK, out)
}

func (rt *Router) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, rt.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rt.writeError(w, r, services.NewInvalidError("error.body_too_large"), "error.internal")
			return nil, false
		}
		rt.writeError(w, r, err, "error.internal")
		return nil, false
	}
	return body, true
}

// RouteLabel maps a request onto its route template so metrics never carry
// raw session identifiers.
func (rt *Router) RouteLabel(r *http.Request) string {
	p := r.URL.Path
	switch {
	case p == rt.prefix+"/survey",
		p == rt.prefix+"/ai/preview",
		p == rt.prefix+"/ai/analyze-style":
		return p
	case strings.HasPrefix(p, rt.prefix+"/survey/"):
		if strings.HasSuffix(p, "/export") {
			return rt.prefix + "/survey/{sessionId}/export"
		}
		return rt.prefix + "/survey/{sessionId}"
	case p == "/health", p == "/version", p == "/metrics":
		return p
	}
	return "other"
}
