package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/soaringjerry/stylus/internal/middleware"
	"github.com/soaringjerry/stylus/internal/services"
	"github.com/soaringjerry/stylus/internal/utils"
)

type errorBody struct {
	Message string           `json:"message"`
	Errors  []services.Issue `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// writeError maps service errors onto status codes. Anything that is not a
// client error is logged and answered with the generic fallbackKey message.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error, fallbackKey string) {
	locale := middleware.LocaleFromContext(r.Context())
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			writeJSON(w, http.StatusBadRequest, errorBody{Message: utils.T(locale, se.Key), Errors: se.Issues})
			return
		case services.ErrorNotFound:
			writeJSON(w, http.StatusNotFound, errorBody{Message: utils.T(locale, se.Key)})
			return
		case services.ErrorConflict:
			writeJSON(w, http.StatusConflict, errorBody{Message: utils.T(locale, se.Key)})
			return
		}
	}
	rt.logger.Error("request failed",
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Message: utils.T(locale, fallbackKey)})
}

func (rt *Router) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Message: utils.T(middleware.LocaleFromContext(r.Context()), "error.method_not_allowed")})
}

func (rt *Router) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Message: utils.T(middleware.LocaleFromContext(r.Context()), "error.not_found")})
}
