// Package requesttime pins one "now" per HTTP request so cache freshness,
// window pruning and token expiry all agree within a request.
package requesttime

import (
	"net/http"
	"time"

	"contentgw/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
