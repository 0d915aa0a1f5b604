package web

import (
	"net/http"

	"github.com/JonMunkholm/chartbind/internal/core"
)

// clientContext records the client IP and User-Agent on the request
// context for audit entries.
func clientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), clientIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
