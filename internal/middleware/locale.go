package middleware

import (
	"context"
	"net/http"

	"github.com/soaringjerry/stylus/internal/utils"
)

type ctxKey int

const (
	localeKey ctxKey = iota + 1
	requestIDKey
)

// Locale picks the response language from ?lang= or Accept-Language and
// stores it in the request context.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := requestLocale(r)
		w.Header().Set("Content-Language", locale)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localeKey, locale)))
	})
}

// requestLocale prefers a locale already stored by Locale and otherwise
// negotiates one from the request, for middleware that runs outside Locale.
func requestLocale(r *http.Request) string {
	if s, ok := r.Context().Value(localeKey).(string); ok && s != "" {
		return s
	}
	return utils.DetermineLocale(
		r.URL.Query().Get("lang"),
		r.Header.Get("Accept-Language"),
		utils.SupportedLocales,
		utils.DefaultLocale,
	)
}

// LocaleFromContext retrieves the locale stored by Locale.
func LocaleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(localeKey).(string); ok && s != "" {
		return s
	}
	return utils.DefaultLocale
}
