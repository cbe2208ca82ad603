package middleware

import (
	"net/http"

	"github.com/2beens/fitdash/pkg"
)

// NoCache stops browsers from caching any of the pages.
func NoCache() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pkg.SetNoCacheHeaders(w)
			next.ServeHTTP(w, r)
		})
	}
}
