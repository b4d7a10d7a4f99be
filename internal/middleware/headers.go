package middleware

import "net/http"

var (
	secureHeaders = [][2]string{
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	}
	noStoreHeaders = [][2]string{
		{"Cache-Control", "no-store, no-cache, must-revalidate, max-age=0"},
		{"Pragma", "no-cache"},
		{"Expires", "0"},
	}
)

func withHeaders(headers [][2]string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range headers {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}

// SecureHeaders adds standard security headers.
func SecureHeaders(next http.Handler) http.Handler { return withHeaders(secureHeaders, next) }

// NoStore marks every response uncacheable. Survey records change on each
// save, so neither API replies nor dev-proxied assets may be reused.
func NoStore(next http.Handler) http.Handler { return withHeaders(noStoreHeaders, next) }
