package api

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// TimeoutMiddleware bounds the request context. Store calls made under it
// fail with context.DeadlineExceeded, which StatusFor maps to 408.
// Websocket upgrades are long lived and are left alone.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 || strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
