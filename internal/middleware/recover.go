package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/soaringjerry/stylus/internal/utils"
)

// Recover turns a handler panic into a 500 JSON reply in the request's
// negotiated language. http.ErrAbortHandler
// is re-raised so net/http can abort the connection as intended.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error("panic in handler",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", v),
					zap.Stack("stack"),
				)
				if rec.wroteHeader() {
					return
				}
				locale := requestLocale(r)
				rec.Header().Set("Content-Type", "application/json")
				rec.Header().Set("Content-Language", locale)
				rec.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(rec).Encode(map[string]string{
					"message": utils.T(locale, "error.internal"),
				})
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
